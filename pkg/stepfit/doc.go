// Package stepfit estimates first-order models from recorded step
// responses.
//
// A first-order system driven by a step settles as
// v(t) = v∞·(1 − e^(−t/τ)). FirstOrder recovers v∞ and τ from a run's
// samples and derives the usual figures of merit (rise time, settling
// time) from them.
package stepfit
