// Package sim provides a simulated first-order plant for tests, examples,
// and --sim CLI runs. No hardware required.
package sim

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/run"
)

// Config describes the simulated plant.
type Config struct {
	// Tau is the time constant of the first-order response.
	Tau time.Duration

	// StepVolts is the output level the plant settles to when the stimulus
	// is high. Low settles to 0 V.
	StepVolts float64

	// Converter quantizes the plant output like a real ADC front end would.
	Converter run.Converter

	// NoiseVolts is the peak amplitude of uniform measurement noise.
	// Zero disables noise, which keeps tests deterministic.
	NoiseVolts float64

	// Seed seeds the noise source. Zero means a time-derived seed.
	Seed int64
}

// DefaultConfig returns a plant resembling the classroom RC network:
// tau 350 ms settling toward ~3.04 V through a 12-bit, 3.3 V converter.
func DefaultConfig() Config {
	return Config{
		Tau:       350 * time.Millisecond,
		StepVolts: 3.04,
		Converter: run.DefaultConverter(),
	}
}

// Plant is a deterministic first-order RC plant.
//
// It implements both ports.AnalogReader and ports.StimulusDriver: driving the
// stimulus re-targets the output, and reads return the exponential approach
// toward the target, quantized through the converter. All timing comes from
// the injected clock, so a fake clock drives the plant in tests.
type Plant struct {
	cfg   Config
	clock ports.Clock
	rng   *rand.Rand

	mu        sync.Mutex
	target    float64 // level the output approaches
	from      float64 // output level when the stimulus last changed
	steppedAt time.Time
}

// NewPlant creates a plant resting at 0 V.
func NewPlant(cfg Config, clk ports.Clock) *Plant {
	if cfg.Tau <= 0 {
		cfg.Tau = DefaultConfig().Tau
	}
	if cfg.Converter.Resolution == 0 {
		cfg.Converter = run.DefaultConverter()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = clk.Now().UnixNano()
	}
	return &Plant{
		cfg:       cfg,
		clock:     clk,
		rng:       rand.New(rand.NewSource(seed)),
		steppedAt: clk.Now(),
	}
}

// Out drives the step input: high re-targets the output to StepVolts,
// low back to 0 V. Implements ports.StimulusDriver.
func (p *Plant) Out(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	p.from = p.valueAt(now)
	p.steppedAt = now
	if high {
		p.target = p.cfg.StepVolts
	} else {
		p.target = 0
	}
	return nil
}

// Read returns the plant output at the current clock time, quantized through
// the converter. Implements ports.AnalogReader.
func (p *Plant) Read() (ports.Reading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.valueAt(p.clock.Now())
	if p.cfg.NoiseVolts > 0 {
		v += (p.rng.Float64()*2 - 1) * p.cfg.NoiseVolts
	}

	raw := p.cfg.Converter.Counts(v)
	return ports.Reading{Raw: raw, Volts: p.cfg.Converter.Volts(raw)}, nil
}

// valueAt computes v(t) = target + (from-target)·e^(−t/τ). Caller holds mu.
func (p *Plant) valueAt(now time.Time) float64 {
	t := now.Sub(p.steppedAt)
	if t <= 0 {
		return p.from
	}
	decay := math.Exp(-float64(t) / float64(p.cfg.Tau))
	return p.target + (p.from-p.target)*decay
}
