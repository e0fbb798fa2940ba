package settlement

import (
	"fmt"
	"strings"
)

// Itemization selects how a losing player's obligation is spread over
// transaction edges in team segments. Net results do not depend on it.
type Itemization int

const (
	// ItemizeSplit divides each loser's obligation evenly across the winners,
	// one edge per (loser, winner) pair.
	ItemizeSplit Itemization = iota
	// ItemizeUndivided shows the full obligation on every (loser, winner) edge.
	ItemizeUndivided
)

func (i Itemization) String() string {
	switch i {
	case ItemizeSplit:
		return "split"
	case ItemizeUndivided:
		return "undivided"
	default:
		return fmt.Sprintf("itemization(%d)", int(i))
	}
}

// ParseItemization maps a configuration string to an Itemization.
func ParseItemization(s string) (Itemization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "split":
		return ItemizeSplit, nil
	case "undivided":
		return ItemizeUndivided, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownItemization, s)
	}
}

// NonFinitePolicy decides what happens to NaN and ±Inf in points or stake.
type NonFinitePolicy int

const (
	// RejectNonFinite fails the calculation with a ValidationError.
	RejectNonFinite NonFinitePolicy = iota
	// ZeroNonFinite treats non-finite numbers as 0.
	ZeroNonFinite
)

func (p NonFinitePolicy) String() string {
	switch p {
	case RejectNonFinite:
		return "reject"
	case ZeroNonFinite:
		return "zero"
	default:
		return fmt.Sprintf("non_finite(%d)", int(p))
	}
}

// ParseNonFinitePolicy maps a configuration string to a NonFinitePolicy.
func ParseNonFinitePolicy(s string) (NonFinitePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectNonFinite, nil
	case "zero":
		return ZeroNonFinite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownNonFinitePolicy, s)
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithItemization sets how team obligations are itemized.
func WithItemization(i Itemization) Option {
	return func(c *Calculator) {
		c.itemization = i
	}
}

// WithNonFinitePolicy sets the handling of NaN and ±Inf inputs.
func WithNonFinitePolicy(p NonFinitePolicy) Option {
	return func(c *Calculator) {
		c.nonFinite = p
	}
}
