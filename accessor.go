package lance

import "fmt"

// VectorAccessor is the boundary between the graph and whatever backs the
// dataset. Vectors are addressed by a dense integer id in [0, Len()).
//
// Implementations must be side-effect free and safe for concurrent readers:
// the sealed graph calls Get from many goroutines at once. Returned slices
// are borrowed - callers must not retain them past the accessor's lifetime
// and must not write through them. The one exception is the builder, which
// preprocesses stored vectors in place at insertion time (cosine
// normalization); that happens strictly before the graph is sealed and
// shared.
//
// A future disk-backed accessor will need to block (or suspend) inside Get
// while a page is fetched. The graph is written so that Get is the only
// point where that can happen: all search bookkeeping lives in per-call
// scratch state, never shared across invocations.
type VectorAccessor interface {
	// Get returns the vector stored for id, or false if id is out of range.
	Get(id uint32) ([]float32, bool)

	// Len returns the number of vectors in the accessor.
	Len() int
}

// Compile-time check to ensure MatrixAccessor implements VectorAccessor
var _ VectorAccessor = (*MatrixAccessor)(nil)

// MatrixAccessor is a VectorAccessor backed by a dense row-major matrix held
// in memory. Row i occupies data[i*dim : (i+1)*dim], so Get is a slice
// expression with no copying and no allocation.
//
// Memory layout:
//   - data: n × dim × 4 bytes, one contiguous allocation
//   - no per-row headers or pointers, which keeps the GC out of the hot path
//
// Thread-safety: Get and Len are safe for concurrent use. Append is not;
// finish appending before handing the accessor to concurrent readers.
type MatrixAccessor struct {
	// data holds all vectors back to back in row-major order
	data []float32

	// dim is the width of every row
	dim int
}

// NewMatrixAccessor creates an accessor over an existing row-major buffer.
//
// The buffer is adopted, not copied; the caller must not mutate it while the
// accessor is in use.
//
// Returns a ConfigError if dim < 1 or the buffer length is not a multiple
// of dim.
func NewMatrixAccessor(data []float32, dim int) (*MatrixAccessor, error) {
	if dim < 1 {
		return nil, &ConfigError{Field: "dim", Reason: "must be at least 1"}
	}

	if len(data)%dim != 0 {
		return nil, &ConfigError{
			Field:  "data",
			Reason: "buffer length must be a multiple of dim",
		}
	}

	return &MatrixAccessor{data: data, dim: dim}, nil
}

// NewMatrixAccessorFromRows creates an accessor by packing individual rows
// into one contiguous row-major buffer. Ids are assigned in slice order:
// rows[i] becomes vector id i.
//
// Returns a ConfigError if rows is empty or the rows have uneven widths.
func NewMatrixAccessorFromRows(rows [][]float32) (*MatrixAccessor, error) {
	if len(rows) == 0 {
		return nil, &ConfigError{Field: "rows", Reason: "must not be empty"}
	}

	dim := len(rows[0])
	if dim < 1 {
		return nil, &ConfigError{Field: "rows", Reason: "rows must not be zero-width"}
	}

	data := make([]float32, 0, len(rows)*dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, &ConfigError{
				Field:  "rows",
				Reason: fmt.Sprintf("row %d has width %d, expected %d", i, len(row), dim),
			}
		}
		data = append(data, row...)
	}

	return &MatrixAccessor{data: data, dim: dim}, nil
}

// Get returns the vector stored for id, or false if id is out of range.
//
// The returned slice aliases the accessor's buffer. The full-slice
// expression caps it so appends by the caller cannot clobber the next row.
func (m *MatrixAccessor) Get(id uint32) ([]float32, bool) {
	off := int(id) * m.dim
	if off >= len(m.data) {
		return nil, false
	}
	return m.data[off : off+m.dim : off+m.dim], true
}

// Len returns the number of vectors in the accessor.
func (m *MatrixAccessor) Len() int {
	return len(m.data) / m.dim
}

// Dim returns the width of every vector in the accessor.
func (m *MatrixAccessor) Dim() int {
	return m.dim
}

// Append adds one vector to the matrix and returns its assigned id. Ids are
// assigned in append order, which makes a loop over Append the "iterable
// source of vectors" entry path for graph construction.
//
// Returns a DimensionError if the vector width does not match the matrix.
func (m *MatrixAccessor) Append(vector []float32) (uint32, error) {
	if len(vector) != m.dim {
		return 0, &DimensionError{Expected: m.dim, Actual: len(vector)}
	}

	id := uint32(m.Len())
	m.data = append(m.data, vector...)
	return id, nil
}
