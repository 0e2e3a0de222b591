package run

// Default conversion constants for a 12-bit ADC referenced to 3.3 V.
const (
	DefaultResolution = 4096
	DefaultVRef       = 3.3
)

// Converter maps raw ADC counts to volts.
type Converter struct {
	// Resolution is the full-scale count of the converter (e.g. 4096 for 12 bits).
	Resolution int32

	// VRef is the full-scale voltage.
	VRef float64
}

// DefaultConverter returns a Converter for a 12-bit, 3.3 V front end.
func DefaultConverter() Converter {
	return Converter{Resolution: DefaultResolution, VRef: DefaultVRef}
}

// Volts converts a raw count to a voltage.
func (c Converter) Volts(raw int32) float64 {
	if c.Resolution <= 0 {
		return 0
	}
	return float64(raw) / float64(c.Resolution) * c.VRef
}

// Counts converts a voltage to the nearest raw count, clamped to the
// converter's range.
func (c Converter) Counts(volts float64) int32 {
	if c.Resolution <= 0 || c.VRef == 0 {
		return 0
	}
	raw := int32(volts/c.VRef*float64(c.Resolution) + 0.5)
	if raw < 0 {
		return 0
	}
	if raw > c.Resolution {
		return c.Resolution
	}
	return raw
}
