package periphio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// StimulusPin implements ports.StimulusDriver on a GPIO output pin.
type StimulusPin struct {
	pin gpio.PinIO
}

// OpenStimulusPin initializes the periph host and claims the pin by name
// (e.g. "GPIO17" or a board alias). The pin is driven low immediately so the
// step starts from a known level.
func OpenStimulusPin(name string) (*StimulusPin, error) {
	if err := initHost(); err != nil {
		return nil, err
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("drive %q low: %w", name, err)
	}
	return &StimulusPin{pin: pin}, nil
}

// Out sets the output level. Implements ports.StimulusDriver.
func (p *StimulusPin) Out(high bool) error {
	return p.pin.Out(gpio.Level(high))
}

// Close parks the pin low and releases it.
func (p *StimulusPin) Close() error {
	if err := p.pin.Out(gpio.Low); err != nil {
		return err
	}
	return p.pin.Halt()
}
