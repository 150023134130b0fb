package lane

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWindows is returned when no angle window is configured.
	ErrNoWindows = errors.New("lane: at least one angle window is required")
	// ErrInvalidWindow is returned for a window that is inverted, reaches
	// ±90° or straddles 0°.
	ErrInvalidWindow = errors.New("lane: invalid angle window")
	// ErrNegativeTTL is returned when the forgiveness window is negative.
	ErrNegativeTTL = errors.New("lane: max ttl must not be negative")
)

// DefaultMaxTTL is the number of consecutive frames without a detection a
// lane boundary survives before it is cleared.
const DefaultMaxTTL = 10

// Window is an inclusive range of signed angles in degrees.
type Window struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether angle lies in [Min, Max].
func (w Window) Contains(angle float64) bool {
	return angle >= w.Min && angle <= w.Max
}

// Validate checks that the window lies strictly inside (-90, 90) on one side
// of 0, so every accepted angle has a finite, non-zero tangent.
func (w Window) Validate() error {
	if w.Min > w.Max {
		return fmt.Errorf("%w: min %.2f > max %.2f", ErrInvalidWindow, w.Min, w.Max)
	}
	if w.Min <= -90 || w.Max >= 90 {
		return fmt.Errorf("%w: [%.2f, %.2f] must lie inside (-90, 90)", ErrInvalidWindow, w.Min, w.Max)
	}
	if w.Min <= 0 && w.Max >= 0 {
		return fmt.Errorf("%w: [%.2f, %.2f] contains 0", ErrInvalidWindow, w.Min, w.Max)
	}
	return nil
}

// Params configures lane estimation.
type Params struct {
	Windows Windows // Accepted angle ranges; negative ranges feed the left side
	MaxTTL  int     // Forgiveness window in frames
}

// DefaultParams returns parameters for a forward-facing dashcam: right
// boundaries lean 40-80°, left boundaries -80 to -60°.
func DefaultParams() Params {
	return Params{
		Windows: Windows{
			{Min: -80, Max: -60},
			{Min: 40, Max: 80},
		},
		MaxTTL: DefaultMaxTTL,
	}
}

// WithWindows returns a copy of params with different angle windows.
func (p Params) WithWindows(windows ...Window) Params {
	p.Windows = append(Windows(nil), windows...)
	return p
}

// WithMaxTTL returns a copy of params with a different forgiveness window.
func (p Params) WithMaxTTL(ttl int) Params {
	p.MaxTTL = ttl
	return p
}

// Validate checks every window and the ttl.
func (p Params) Validate() error {
	if len(p.Windows) == 0 {
		return ErrNoWindows
	}
	for i, w := range p.Windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window %d: %w", i, err)
		}
	}
	if p.MaxTTL < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTTL, p.MaxTTL)
	}
	return nil
}
