package tools

import (
	"fmt"

	"github.com/smazurov/ledmcp/internal/led"
)

// Tool names.
const (
	TurnOn        = "turn_on_led"
	TurnOff       = "turn_off_led"
	GetStatus     = "get_led_status"
	SetBrightness = "set_brightness"
	Blink         = "blink_led"
	SetColor      = "set_led_color"
)

// ParamType is the JSON schema type of a tool parameter.
type ParamType string

// Parameter types.
const (
	ParamInteger ParamType = "integer"
	ParamString  ParamType = "string"
)

// Param describes one tool argument.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required,omitempty"`
	Min         *int      `json:"minimum,omitempty"`
	Max         *int      `json:"maximum,omitempty"`
	Default     any       `json:"default,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
}

// Definition describes a callable tool.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

func intPtr(v int) *int { return &v }

var definitions = []Definition{
	{
		Name:        TurnOn,
		Description: "Turn the LED on at the given brightness (0-100%)",
		Params: []Param{{
			Name:        "brightness",
			Type:        ParamInteger,
			Description: fmt.Sprintf("LED brightness (0-100). Default: %d", led.DefaultBrightness),
			Min:         intPtr(led.MinBrightness),
			Max:         intPtr(led.MaxBrightness),
			Default:     led.DefaultBrightness,
		}},
	},
	{
		Name:        TurnOff,
		Description: "Turn the LED off completely",
	},
	{
		Name:        GetStatus,
		Description: "Get the current LED state (on/off, brightness, color)",
	},
	{
		Name:        SetBrightness,
		Description: "Set the LED brightness to a specific level (0-100%)",
		Params: []Param{{
			Name:        "brightness",
			Type:        ParamInteger,
			Description: "New brightness level (0-100)",
			Required:    true,
			Min:         intPtr(led.MinBrightness),
			Max:         intPtr(led.MaxBrightness),
		}},
	},
	{
		Name:        Blink,
		Description: "Blink the LED a number of times",
		Params: []Param{
			{
				Name:        "times",
				Type:        ParamInteger,
				Description: fmt.Sprintf("Number of blinks (1-20). Default: %d", led.DefaultBlinkTimes),
				Min:         intPtr(led.MinBlinkTimes),
				Max:         intPtr(led.MaxBlinkTimes),
				Default:     led.DefaultBlinkTimes,
			},
			{
				Name:        "duration",
				Type:        ParamInteger,
				Description: fmt.Sprintf("Duration of each blink in milliseconds (100-5000). Default: %d", led.DefaultBlinkMs),
				Min:         intPtr(led.MinBlinkDurationMs),
				Max:         intPtr(led.MaxBlinkDurationMs),
				Default:     led.DefaultBlinkMs,
			},
		},
	},
	{
		Name:        SetColor,
		Description: "Change the LED color (RGB LEDs only)",
		Params: []Param{{
			Name:        "color",
			Type:        ParamString,
			Description: "LED color: red, green, blue, yellow, cyan, magenta, white",
			Required:    true,
			Enum:        led.ColorNames(),
		}},
	},
}

// Definitions returns the catalogue of tools in registration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}
