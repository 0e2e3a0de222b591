// Package run defines the recorded data model for step response captures.
//
// A [Run] is one acquisition session's ordered sequence of [Sample] values.
// The recorder appends to a run while acquiring; once acquisition stops the
// run is frozen and becomes read-only. Elapsed times are strictly increasing
// across a run.
//
// [Converter] maps raw ADC counts to volts. [EncodeCSV] and [DecodeCSV]
// implement the "<elapsed-ms>,<volts>" wire convention terminated by the
// "End" sentinel, which is what the plotting side consumes.
//
// [FileRepository] persists the last-run status as JSON in a data directory
// using atomic writes.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package run
