package led

import (
	"sync"

	"github.com/smazurov/ledmcp/internal/logging"
)

// Device is an in-memory simulated LED. No hardware is touched.
type Device struct {
	mu     sync.Mutex
	state  State
	logger logging.Logger
}

// NewDevice creates a simulated LED in its default state.
func NewDevice(logger logging.Logger) *Device {
	return &Device{
		state:  DefaultState(),
		logger: logger,
	}
}

// TurnOn powers the LED on at the given brightness.
func (d *Device) TurnOn(brightness int) error {
	if err := ValidateBrightness(brightness); err != nil {
		return err
	}

	d.mu.Lock()
	d.state.On = true
	d.state.Brightness = brightness
	d.mu.Unlock()

	d.logger.Info("LED turned on", "brightness", brightness)
	return nil
}

// TurnOff powers the LED off.
func (d *Device) TurnOff() {
	d.mu.Lock()
	d.state.On = false
	d.state.Brightness = 0
	d.mu.Unlock()

	d.logger.Info("LED turned off")
}

// SetBrightness sets brightness and powers the LED on when brightness > 0.
// A zero brightness leaves the power flag as it was.
func (d *Device) SetBrightness(brightness int) error {
	if err := ValidateBrightness(brightness); err != nil {
		return err
	}

	d.mu.Lock()
	d.state.Brightness = brightness
	if brightness > 0 {
		d.state.On = true
	}
	d.mu.Unlock()

	d.logger.Info("LED brightness set", "brightness", brightness)
	return nil
}

// SetColor changes the LED color.
func (d *Device) SetColor(color Color) error {
	if _, err := ParseColor(string(color)); err != nil {
		return err
	}

	d.mu.Lock()
	d.state.Color = color
	d.mu.Unlock()

	d.logger.Info("LED color set", "color", color)
	return nil
}

// Blink validates the request and logs it.
func (d *Device) Blink(times, durationMs int) error {
	if err := ValidateBlink(times, durationMs); err != nil {
		return err
	}
	d.logger.Info("LED blinking", "times", times, "duration_ms", durationMs)
	return nil
}

// Status returns a copy of the current state.
func (d *Device) Status() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

var _ Controller = (*Device)(nil)
