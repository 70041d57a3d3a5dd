// Package settings holds the player's presentation preferences.
package settings

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for settings validation.
var (
	// ErrInvalidVolume indicates a volume outside [0, 1] or not finite.
	ErrInvalidVolume = errors.New("volume must be a finite number between 0.0 and 1.0")
	// ErrInvalidTextSpeed indicates a text speed that is not a finite positive number.
	ErrInvalidTextSpeed = errors.New("text speed must be a finite number greater than 0")
)

// Settings is an immutable, validated set of player preferences.
type Settings struct {
	volume    float64
	textSpeed float64
	autoSave  bool
}

// Default returns volume 0.8, text speed 1.0 and autosave on.
func Default() Settings {
	return Settings{volume: 0.8, textSpeed: 1.0, autoSave: true}
}

// New validates and returns a Settings value.
func New(volume, textSpeed float64, autoSave bool) (Settings, error) {
	if math.IsNaN(volume) || math.IsInf(volume, 0) || volume < 0 || volume > 1 {
		return Settings{}, fmt.Errorf("%w: got %v", ErrInvalidVolume, volume)
	}
	if math.IsNaN(textSpeed) || math.IsInf(textSpeed, 0) || textSpeed <= 0 {
		return Settings{}, fmt.Errorf("%w: got %v", ErrInvalidTextSpeed, textSpeed)
	}
	return Settings{volume: volume, textSpeed: textSpeed, autoSave: autoSave}, nil
}

// Volume returns the master volume in [0, 1].
func (s Settings) Volume() float64 {
	return s.volume
}

// TextSpeed returns the text speed multiplier, always positive.
func (s Settings) TextSpeed() float64 {
	return s.textSpeed
}

// AutoSaveEnabled reports whether progress should be saved automatically.
func (s Settings) AutoSaveEnabled() bool {
	return s.autoSave
}

// WithVolume returns a copy with volume replaced.
func (s Settings) WithVolume(v float64) (Settings, error) {
	return New(v, s.textSpeed, s.autoSave)
}

// WithTextSpeed returns a copy with text speed replaced.
func (s Settings) WithTextSpeed(v float64) (Settings, error) {
	return New(s.volume, v, s.autoSave)
}

// WithAutoSave returns a copy with the autosave flag replaced.
func (s Settings) WithAutoSave(on bool) Settings {
	s.autoSave = on
	return s
}

// Equal reports whether both values hold the same preferences.
func (s Settings) Equal(other Settings) bool {
	return s == other
}
