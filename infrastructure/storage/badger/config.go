// Package badger provides a BadgerDB-backed plan cache.
package badger

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/gridplan/infrastructure/logging"
)

// Config configures BadgerDB storage.
type Config struct {
	// Dir is the directory to store data in.
	Dir string

	// InMemory keeps all data in memory (useful for testing).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// ValueLogFileSize sets the size of value log files in bytes.
	ValueLogFileSize int64

	// GCDiscardRatio is the discard ratio for value log GC.
	GCDiscardRatio float64

	// GCInterval is the interval between GC runs. Zero disables GC.
	GCInterval time.Duration

	// KeyPrefix is added to all keys.
	KeyPrefix string

	// Logger receives badger's internal logs. Nil routes them to bolt.
	Logger badger.Logger
}

// Option configures BadgerDB storage.
type Option func(*Config)

// WithDir sets the data directory.
func WithDir(dir string) Option {
	return func(c *Config) {
		c.Dir = dir
	}
}

// WithInMemory enables in-memory storage.
func WithInMemory() Option {
	return func(c *Config) {
		c.InMemory = true
	}
}

// WithSyncWrites enables synchronous writes.
func WithSyncWrites() Option {
	return func(c *Config) {
		c.SyncWrites = true
	}
}

// WithGCInterval sets the GC interval.
func WithGCInterval(d time.Duration) Option {
	return func(c *Config) {
		c.GCInterval = d
	}
}

// WithKeyPrefix sets the key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger badger.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		ValueLogFileSize: 1 << 26, // 64MB; plans are small
		GCDiscardRatio:   0.5,
		GCInterval:       10 * time.Minute,
	}
}

// ErrOpenFailed is returned when the database cannot be opened.
var ErrOpenFailed = errors.New("badger: open failed")

func openDB(cfg Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Dir)

	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(cfg.ValueLogFileSize)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(cfg.Logger)
	} else {
		opts = opts.WithLogger(logging.NewPrintfLogger("badger"))
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(ErrOpenFailed, err)
	}
	return db, nil
}
