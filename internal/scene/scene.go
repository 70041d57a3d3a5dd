// Package scene provides the position counter within a route.
package scene

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidSceneNumber is returned when a scene number is not a finite,
// non-negative integer.
var ErrInvalidSceneNumber = errors.New("invalid scene number")

// Counter is an immutable, non-negative scene index.
type Counter struct {
	value int
}

// Zero returns the counter at scene 0.
func Zero() Counter {
	return Counter{}
}

// From returns a counter at n, or ErrInvalidSceneNumber if n is negative.
func From(n int) (Counter, error) {
	if n < 0 {
		return Counter{}, fmt.Errorf("%w: %d is negative", ErrInvalidSceneNumber, n)
	}
	return Counter{value: n}, nil
}

// FromFloat converts a decoded numeric value (e.g. from JSON) to a counter.
// NaN, infinities, fractional and negative values are rejected.
func FromFloat(f float64) (Counter, error) {
	switch {
	case math.IsNaN(f):
		return Counter{}, fmt.Errorf("%w: not a number", ErrInvalidSceneNumber)
	case math.IsInf(f, 0):
		return Counter{}, fmt.Errorf("%w: not finite", ErrInvalidSceneNumber)
	case f != math.Trunc(f):
		return Counter{}, fmt.Errorf("%w: %v is not an integer", ErrInvalidSceneNumber, f)
	case f < 0:
		return Counter{}, fmt.Errorf("%w: %v is negative", ErrInvalidSceneNumber, f)
	case f >= math.MaxInt:
		return Counter{}, fmt.Errorf("%w: %v overflows int", ErrInvalidSceneNumber, f)
	}
	return Counter{value: int(f)}, nil
}

// Value returns the scene index.
func (c Counter) Value() int {
	return c.value
}

// Next returns the counter one scene later. The receiver is unchanged. At
// math.MaxInt the counter saturates.
func (c Counter) Next() Counter {
	if c.value == math.MaxInt {
		return c
	}
	return Counter{value: c.value + 1}
}

// Equal reports whether both counters hold the same scene.
func (c Counter) Equal(other Counter) bool {
	return c.value == other.value
}

// IsLastScene reports whether the counter sits on the final index of a route
// with total scenes.
func (c Counter) IsLastScene(total int) bool {
	return c.value == total-1
}

// String formats the scene index in decimal.
func (c Counter) String() string {
	return strconv.Itoa(c.value)
}
