// Package menu defines the closed set of top-level menu options and a single
// dispatch point for them.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownOption is returned by Parse for input that names no option.
var ErrUnknownOption = errors.New("unknown menu option")

// Option is a top-level menu choice.
type Option int

// Menu options in display order.
const (
	Start Option = iota
	Load
	Settings
	Routes
	Advance
	Quit
)

var names = [...]string{
	Start:    "start",
	Load:     "load",
	Settings: "settings",
	Routes:   "routes",
	Advance:  "advance",
	Quit:     "quit",
}

// aliases maps short or alternate spellings to options.
var aliases = map[string]Option{
	"s":    Start,
	"new":  Start,
	"l":    Load,
	"o":    Settings,
	"r":    Routes,
	"a":    Advance,
	"next": Advance,
	"n":    Advance,
	"q":    Quit,
	"exit": Quit,
}

// All returns every option in menu order.
func All() []Option {
	return []Option{Start, Load, Settings, Routes, Advance, Quit}
}

// String returns the option keyword, or Option(n) when out of range.
func (o Option) String() string {
	if o < 0 || int(o) >= len(names) {
		return fmt.Sprintf("Option(%d)", int(o))
	}
	return names[o]
}

// Parse maps a case-insensitive option name or alias to an Option.
func Parse(s string) (Option, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == key {
			return Option(i), nil
		}
	}
	if o, ok := aliases[key]; ok {
		return o, nil
	}
	if o, ok := Suggest(key); ok {
		return 0, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnknownOption, s, o)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOption, s)
}

// Suggest returns the option whose name is closest to s by edit distance,
// if any is close enough to be a likely typo.
func Suggest(s string) (Option, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return 0, false
	}
	best, bestDist := Option(0), -1
	for i, n := range names {
		d := levenshtein.ComputeDistance(key, n)
		if d > typoLimit(len(n)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = Option(i), d
		}
	}
	return best, bestDist >= 0
}

func typoLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Handlers holds one function per option. A nil handler makes Dispatch fail
// for that option.
type Handlers struct {
	Start    func(ctx context.Context) error
	Load     func(ctx context.Context) error
	Settings func(ctx context.Context) error
	Routes   func(ctx context.Context) error
	Advance  func(ctx context.Context) error
	Quit     func(ctx context.Context) error
}

// Dispatch runs the handler for opt.
func Dispatch(ctx context.Context, opt Option, h Handlers) error {
	var fn func(context.Context) error
	switch opt {
	case Start:
		fn = h.Start
	case Load:
		fn = h.Load
	case Settings:
		fn = h.Settings
	case Routes:
		fn = h.Routes
	case Advance:
		fn = h.Advance
	case Quit:
		fn = h.Quit
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOption, opt)
	}
	if fn == nil {
		return fmt.Errorf("menu: no handler for %s", opt)
	}
	return fn(ctx)
}
