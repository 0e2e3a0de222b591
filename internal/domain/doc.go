// Package domain contains the core domain rules for steplog.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (hardware, file system, logging)
// and contains only acquisition rules and sentinel errors.
//
// The recorded data model itself (Sample, Run) lives in the public
// pkg/run module so that callers can consume frozen runs without importing
// internal packages.
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on acquisition rules and invariants
//   - Testable without mocks or external systems
package domain
