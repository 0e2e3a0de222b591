package periphio

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"

	"github.com/mecha-labs/steplog/internal/ports"
)

// ADCConfig selects the I²C bus and conversion parameters for the ADS1115.
type ADCConfig struct {
	// Bus is the I²C bus name (e.g. "1" or "/dev/i2c-1"). Empty picks the
	// first available bus.
	Bus string

	// Channel is the single-ended input channel, 0 to 3.
	Channel int

	// FullScale is the measurement range. The ADS1115 PGA is set to the
	// smallest range covering it. Defaults to 3.3 V.
	FullScale physic.ElectricPotential

	// DataRate is the requested conversions per second. Must be at least the
	// sampling rate of the acquisition. Defaults to 128 Hz.
	DataRate physic.Frequency
}

// ADS1115Reader implements ports.AnalogReader on an ADS1115 over I²C.
type ADS1115Reader struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

// OpenADS1115 initializes the periph host, opens the bus, and configures one
// single-ended channel for reading.
func OpenADS1115(cfg ADCConfig) (*ADS1115Reader, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	if cfg.FullScale == 0 {
		cfg.FullScale = 3300 * physic.MilliVolt
	}
	if cfg.DataRate == 0 {
		cfg.DataRate = 128 * physic.Hertz
	}

	channel, err := singleEndedChannel(cfg.Channel)
	if err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.Bus, err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	pin, err := adc.PinForChannel(channel, cfg.FullScale, cfg.DataRate, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("configure channel %d: %w", cfg.Channel, err)
	}

	return &ADS1115Reader{bus: bus, pin: pin}, nil
}

// Read performs one conversion. Implements ports.AnalogReader.
func (r *ADS1115Reader) Read() (ports.Reading, error) {
	sample, err := r.pin.Read()
	if err != nil {
		return ports.Reading{}, err
	}
	return ports.Reading{
		Raw:   sample.Raw,
		Volts: float64(sample.V) / float64(physic.Volt),
	}, nil
}

// Close halts the channel and releases the bus.
func (r *ADS1115Reader) Close() error {
	if err := r.pin.Halt(); err != nil {
		r.bus.Close()
		return err
	}
	return r.bus.Close()
}

func singleEndedChannel(n int) (ads1x15.Channel, error) {
	switch n {
	case 0:
		return ads1x15.Channel0, nil
	case 1:
		return ads1x15.Channel1, nil
	case 2:
		return ads1x15.Channel2, nil
	case 3:
		return ads1x15.Channel3, nil
	default:
		return 0, fmt.Errorf("ads1115 channel must be 0-3, got %d", n)
	}
}
