package stepfit

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mecha-labs/steplog/pkg/run"
)

// Fit errors can be checked with errors.Is.
var (
	// ErrTooFewSamples is returned when the run has too few usable points.
	ErrTooFewSamples = errors.New("stepfit: too few samples")

	// ErrNoPlateau is returned when the response has no positive settled
	// level to fit against.
	ErrNoPlateau = errors.New("stepfit: no plateau")
)

const (
	// minSamples is the smallest run worth fitting.
	minSamples = 8

	// minRegressionPoints is the smallest usable point set for the slope fit.
	minRegressionPoints = 3

	// plateauCutoff excludes points within 5% of the plateau, where
	// ln(1 − v/v∞) amplifies quantization noise.
	plateauCutoff = 0.05
)

// Fit is the estimated first-order model of a step response,
// v(t) = v∞·(1 − e^(−t/τ)).
type Fit struct {
	// FinalVolts is v∞, estimated from the tail of the run.
	FinalVolts float64

	// Tau is the time constant τ.
	Tau time.Duration

	// RSquared is the coefficient of determination of the log-linear fit.
	RSquared float64

	// RiseTime is the 10–90% rise time, τ·ln 9.
	RiseTime time.Duration

	// SettlingTime is the 2% settling time, τ·ln 50.
	SettlingTime time.Duration
}

// FirstOrder fits a first-order step response model to the samples.
//
// v∞ is the mean of the tail (the last tenth of the run, at least five
// samples). τ comes from a least-squares fit of ln(1 − v/v∞) against elapsed
// time through the origin, which is linear with slope −1/τ for a first-order
// system.
func FirstOrder(samples []run.Sample) (Fit, error) {
	if len(samples) < minSamples {
		return Fit{}, ErrTooFewSamples
	}

	tail := len(samples) / 10
	if tail < 5 {
		tail = 5
	}

	tailVolts := make([]float64, 0, tail)
	for _, s := range samples[len(samples)-tail:] {
		tailVolts = append(tailVolts, s.Volts)
	}
	final := stat.Mean(tailVolts, nil)
	if final <= 0 {
		return Fit{}, ErrNoPlateau
	}

	var xs, ys []float64
	for _, s := range samples[:len(samples)-tail] {
		remaining := 1 - s.Volts/final
		if remaining <= plateauCutoff {
			continue
		}
		xs = append(xs, s.Elapsed.Seconds())
		ys = append(ys, math.Log(remaining))
	}
	if len(xs) < minRegressionPoints {
		return Fit{}, ErrTooFewSamples
	}

	_, beta := stat.LinearRegression(xs, ys, nil, true)
	if beta >= 0 || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return Fit{}, ErrNoPlateau
	}

	tau := -1 / beta
	return Fit{
		FinalVolts:   final,
		Tau:          secondsToDuration(tau),
		RSquared:     stat.RSquared(xs, ys, nil, 0, beta),
		RiseTime:     secondsToDuration(tau * math.Log(9)),
		SettlingTime: secondsToDuration(tau * math.Log(50)),
	}, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
