package led

// Controller abstracts control of a single simulated LED.
// Implementations validate their inputs and leave state untouched on error.
type Controller interface {
	// TurnOn powers the LED on at the given brightness (0-100).
	TurnOn(brightness int) error

	// TurnOff powers the LED off and resets brightness to zero.
	TurnOff()

	// SetBrightness changes brightness. A non-zero value also powers the LED on.
	SetBrightness(brightness int) error

	// SetColor changes the LED color.
	SetColor(color Color) error

	// Blink acknowledges a blink request. Simulated LEDs do not change state.
	Blink(times, durationMs int) error

	// Status returns a snapshot of the current state.
	Status() State
}
