package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smazurov/ledmcp/internal/led"
	"github.com/smazurov/ledmcp/internal/logging"
)

var errMissingArg = errors.New("missing required argument")

type handlerFunc func(args map[string]any) Result

// Dispatcher maps tool names and arguments onto a led.Controller.
// Validation problems are returned as failed Results, never as errors.
type Dispatcher struct {
	controller led.Controller
	handlers   map[string]handlerFunc
	logger     logging.Logger
}

// NewDispatcher creates a dispatcher that owns the given controller.
func NewDispatcher(controller led.Controller, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		controller: controller,
		logger:     logger,
	}
	d.handlers = map[string]handlerFunc{
		TurnOn:        d.turnOn,
		TurnOff:       d.turnOff,
		GetStatus:     d.getStatus,
		SetBrightness: d.setBrightness,
		Blink:         d.blink,
		SetColor:      d.setColor,
	}
	return d
}

// Call runs the named tool. A nil args map is treated as empty.
func (d *Dispatcher) Call(_ context.Context, name string, args map[string]any) Result {
	handler, ok := d.handlers[name]
	if !ok {
		d.logger.Warn("Unknown tool requested", "tool", name)
		return Failure("Unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}

	res := handler(args)
	if res.OK {
		d.logger.Info("Tool call succeeded", "tool", name)
	} else {
		d.logger.Warn("Tool call rejected", "tool", name, "reason", res.Message)
	}
	return res
}

// Status exposes the controller snapshot for callers outside the tool surface.
func (d *Dispatcher) Status() led.State {
	return d.controller.Status()
}

func (d *Dispatcher) turnOn(args map[string]any) Result {
	brightness, err := intArg(args, "brightness", led.DefaultBrightness, false)
	if err != nil {
		return Failure("Error: %v", err)
	}
	if err := d.controller.TurnOn(brightness); err != nil {
		return Failure("Error: brightness must be between %d and %d. Received: %d",
			led.MinBrightness, led.MaxBrightness, brightness)
	}
	return Success("LED turned on with brightness at %d%%", brightness)
}

func (d *Dispatcher) turnOff(_ map[string]any) Result {
	d.controller.TurnOff()
	return Success("LED turned off")
}

func (d *Dispatcher) getStatus(_ map[string]any) Result {
	return Result{OK: true, Message: FormatStatus(d.controller.Status())}
}

func (d *Dispatcher) setBrightness(args map[string]any) Result {
	brightness, err := intArg(args, "brightness", 0, true)
	if err != nil {
		return Failure("Error: %v", err)
	}
	if err := d.controller.SetBrightness(brightness); err != nil {
		return Failure("Error: brightness must be between %d and %d. Received: %d",
			led.MinBrightness, led.MaxBrightness, brightness)
	}
	return Success("Brightness set to %d%%", brightness)
}

func (d *Dispatcher) blink(args map[string]any) Result {
	times, err := intArg(args, "times", led.DefaultBlinkTimes, false)
	if err != nil {
		return Failure("Error: %v", err)
	}
	duration, err := intArg(args, "duration", led.DefaultBlinkMs, false)
	if err != nil {
		return Failure("Error: %v", err)
	}
	if err := d.controller.Blink(times, duration); err != nil {
		return Failure("Error: %v", err)
	}
	return Success("LED blinking %d times with %dms per blink", times, duration)
}

func (d *Dispatcher) setColor(args map[string]any) Result {
	raw, ok := args["color"]
	if !ok || raw == nil {
		return Failure("Error: %v: color", errMissingArg)
	}
	name, ok := raw.(string)
	if !ok {
		return Failure("Error: color must be a string")
	}
	color, err := led.ParseColor(name)
	if err == nil {
		err = d.controller.SetColor(color)
	}
	if err != nil {
		return Failure("Error: invalid color. Available colors: %s", strings.Join(led.ColorNames(), ", "))
	}
	return Success("LED color changed to %s", color)
}

// FormatStatus renders a state snapshot as the multi-line status reply.
func FormatStatus(st led.State) string {
	on := "No"
	if st.On {
		on = "Yes"
	}
	return fmt.Sprintf("LED status:\n- On: %s\n- Brightness: %d%%\n- Color: %s", on, st.Brightness, st.Color)
}

// intArg reads an integral argument. JSON numbers arrive as float64, so
// integral floats are accepted and fractional ones rejected.
func intArg(args map[string]any, name string, def int, required bool) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		if required {
			return 0, fmt.Errorf("%w: %s", errMissingArg, name)
		}
		return def, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("%s must be an integer, got %v", name, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer, got %T", name, raw)
	}
}
