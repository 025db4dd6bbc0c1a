package grid

import "fmt"

// Action is one of the five agent actions.
type Action uint8

// Actions in canonical priority order. Successor generation and therefore
// plan selection follow this order.
const (
	Vacuum Action = iota
	North
	South
	East
	West
)

var actionTokens = [...]string{
	Vacuum: "V",
	North:  "N",
	South:  "S",
	East:   "E",
	West:   "W",
}

var actionNames = [...]string{
	Vacuum: "vacuum",
	North:  "north",
	South:  "south",
	East:   "east",
	West:   "west",
}

// AllActions returns every action in canonical order.
func AllActions() []Action {
	return []Action{Vacuum, North, South, East, West}
}

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	return a <= West
}

// String returns the single-letter output token (V, N, S, E, W).
func (a Action) String() string {
	if !a.IsValid() {
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
	return actionTokens[a]
}

// Name returns the lowercase action name.
func (a Action) Name() string {
	if !a.IsValid() {
		return a.String()
	}
	return actionNames[a]
}

// IsMove reports whether the action moves the agent.
func (a Action) IsMove() bool {
	return a >= North && a <= West
}

// delta returns the row and column displacement of a move.
func (a Action) delta() (int, int) {
	switch a {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	case West:
		return 0, -1
	default:
		return 0, 0
	}
}

// ParseAction parses an output token or a lowercase action name.
func ParseAction(s string) (Action, error) {
	for _, a := range AllActions() {
		if s == actionTokens[a] || s == actionNames[a] {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// MarshalText encodes the action as its output token.
func (a Action) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}
	return []byte(actionTokens[a]), nil
}

// UnmarshalText decodes an output token or action name.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
