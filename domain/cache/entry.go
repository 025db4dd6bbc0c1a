package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/gridplan/domain/search"
)

// Key builds the cache key for a world searched with an algorithm.
func Key(alg search.Algorithm, fingerprint string) string {
	return string(alg) + ":" + fingerprint
}

// Entry is the cached form of a search result.
type Entry struct {
	Algorithm   search.Algorithm `json:"algorithm"`
	Fingerprint string           `json:"fingerprint"`
	Result      search.Result    `json:"result"`
	StoredAt    time.Time        `json:"stored_at"`
}

// Encode serializes the entry.
func (e Entry) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return data, nil
}

// DecodeEntry parses a cached value and checks it belongs to the expected key.
func DecodeEntry(data []byte, alg search.Algorithm, fingerprint string) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if e.Algorithm != alg || e.Fingerprint != fingerprint {
		return Entry{}, fmt.Errorf("%w: entry for %s:%s", ErrInvalidEntry, e.Algorithm, e.Fingerprint)
	}
	return e, nil
}
