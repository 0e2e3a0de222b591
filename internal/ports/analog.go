package ports

// Reading is one raw sample from the analog front end.
type Reading struct {
	// Raw is the converter output in counts.
	Raw int32

	// Volts is the converted voltage.
	Volts float64
}

// AnalogReader reads one voltage sample from the analog input.
//
// Read is called once per tick from the sampling goroutine and must return
// well within one sample period; a slow or failed read costs that tick only.
type AnalogReader interface {
	Read() (Reading, error)
}

// StimulusDriver drives the step input line.
// The recorder drives the line high when acquisition starts and low when it
// stops. A nil driver means the step is applied externally.
type StimulusDriver interface {
	// Out sets the output level.
	Out(high bool) error
}
