package lance

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a node id has no backing vector in the
// accessor. Inside a sealed graph every neighbor edge points at a valid id,
// so seeing this error after Seal() means the graph or its backing storage
// has been corrupted. Treat it as an internal-consistency fault, not as a
// user-facing condition to retry.
var ErrOutOfRange = errors.New("vector id out of range")

// ErrAlreadyInserted is returned when an id is inserted into a builder twice.
// The graph has no update semantics; each id is inserted exactly once.
var ErrAlreadyInserted = errors.New("id already inserted")

// ErrSealed is returned when a builder is used after Seal().
var ErrSealed = errors.New("graph builder already sealed")

// ConfigError reports an invalid builder or query parameter. It is returned
// before any graph state is touched, so a failed call never leaves a
// partially mutated graph behind.
type ConfigError struct {
	Field  string // Parameter name, e.g. "mMax" or "efSearch"
	Reason string // Human-readable constraint that was violated
}

// Error returns the error message for an invalid parameter.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DimensionError reports a vector whose width does not match the graph.
type DimensionError struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for a dimension mismatch.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
