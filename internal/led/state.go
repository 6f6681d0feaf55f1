package led

import (
	"errors"
	"fmt"
	"strings"
)

// Brightness and blink bounds.
const (
	MinBrightness     = 0
	MaxBrightness     = 100
	DefaultBrightness = 100

	MinBlinkTimes      = 1
	MaxBlinkTimes      = 20
	DefaultBlinkTimes  = 3
	MinBlinkDurationMs = 100
	MaxBlinkDurationMs = 5000
	DefaultBlinkMs     = 500
)

// Validation errors returned by Controller implementations.
var (
	ErrBrightnessRange = errors.New("brightness out of range")
	ErrInvalidColor    = errors.New("invalid color")
	ErrBlinkRange      = errors.New("blink parameters out of range")
)

// Color is one of the fixed colors an RGB LED can show.
type Color string

// Supported colors.
const (
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorYellow  Color = "yellow"
	ColorCyan    Color = "cyan"
	ColorMagenta Color = "magenta"
	ColorWhite   Color = "white"
)

// Colors lists every supported color in display order.
var Colors = []Color{
	ColorRed,
	ColorGreen,
	ColorBlue,
	ColorYellow,
	ColorCyan,
	ColorMagenta,
	ColorWhite,
}

// ColorNames returns the supported colors as plain strings.
func ColorNames() []string {
	names := make([]string, len(Colors))
	for i, c := range Colors {
		names[i] = string(c)
	}
	return names
}

// ParseColor returns the Color matching name exactly.
func ParseColor(name string) (Color, error) {
	for _, c := range Colors {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrInvalidColor, name, strings.Join(ColorNames(), ", "))
}

// ValidateBrightness reports whether brightness lies in [0, 100].
func ValidateBrightness(brightness int) error {
	if brightness < MinBrightness || brightness > MaxBrightness {
		return fmt.Errorf("%w: must be between %d and %d, got %d",
			ErrBrightnessRange, MinBrightness, MaxBrightness, brightness)
	}
	return nil
}

// ValidateBlink checks blink repetitions and per-blink duration.
func ValidateBlink(times, durationMs int) error {
	if times < MinBlinkTimes || times > MaxBlinkTimes {
		return fmt.Errorf("%w: times must be between %d and %d, got %d",
			ErrBlinkRange, MinBlinkTimes, MaxBlinkTimes, times)
	}
	if durationMs < MinBlinkDurationMs || durationMs > MaxBlinkDurationMs {
		return fmt.Errorf("%w: duration must be between %d and %d ms, got %d",
			ErrBlinkRange, MinBlinkDurationMs, MaxBlinkDurationMs, durationMs)
	}
	return nil
}

// State is a snapshot of a single LED.
type State struct {
	On         bool  `json:"is_on"`
	Brightness int   `json:"brightness"`
	Color      Color `json:"color"`
	// BlinkCount is reported for compatibility and is always zero.
	BlinkCount int `json:"blink_count"`
}

// DefaultState is the power-on state of a simulated LED.
func DefaultState() State {
	return State{
		On:         false,
		Brightness: 0,
		Color:      ColorWhite,
	}
}
