package ports

import "github.com/mecha-labs/steplog/pkg/log"

// Logger re-exports the pkg/log abstraction so internal packages can take a
// logger without importing the public module directly.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, mirrored from pkg/log.
var (
	String   = log.String
	Int      = log.Int
	Int32    = log.Int32
	Int64    = log.Int64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
