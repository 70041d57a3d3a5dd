package settings

import (
	"errors"
	"math"
	"testing"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	s := Default()
	if s.Volume() != 0.8 || s.TextSpeed() != 1.0 || !s.AutoSaveEnabled() {
		t.Errorf("Default() = %+v, want volume 0.8, speed 1.0, autosave on", s)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		volume    float64
		textSpeed float64
		wantErr   error
	}{
		{"valid", 0.5, 1.5, nil},
		{"volume bounds inclusive low", 0, 1, nil},
		{"volume bounds inclusive high", 1, 1, nil},
		{"volume negative", -0.1, 1, ErrInvalidVolume},
		{"volume above one", 1.1, 1, ErrInvalidVolume},
		{"volume nan", math.NaN(), 1, ErrInvalidVolume},
		{"volume infinite", math.Inf(1), 1, ErrInvalidVolume},
		{"speed zero", 0.5, 0, ErrInvalidTextSpeed},
		{"speed negative", 0.5, -1, ErrInvalidTextSpeed},
		{"speed nan", 0.5, math.NaN(), ErrInvalidTextSpeed},
		{"speed infinite", 0.5, math.Inf(1), ErrInvalidTextSpeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.volume, tt.textSpeed, true)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithers(t *testing.T) {
	t.Parallel()
	base := Default()

	louder, err := base.WithVolume(1)
	if err != nil {
		t.Fatalf("WithVolume: %v", err)
	}
	if louder.Volume() != 1 || louder.TextSpeed() != base.TextSpeed() {
		t.Errorf("WithVolume result = %+v", louder)
	}
	if base.Volume() != 0.8 {
		t.Error("WithVolume mutated the receiver")
	}

	if _, err := base.WithTextSpeed(0); !errors.Is(err, ErrInvalidTextSpeed) {
		t.Errorf("WithTextSpeed(0) error = %v, want ErrInvalidTextSpeed", err)
	}

	off := base.WithAutoSave(false)
	if off.AutoSaveEnabled() || !base.AutoSaveEnabled() {
		t.Error("WithAutoSave did not produce an independent copy")
	}
	if off.Equal(base) {
		t.Error("expected settings to differ")
	}
	if !off.WithAutoSave(true).Equal(base) {
		t.Error("expected settings to be equal after restoring autosave")
	}
}
