package lance

import (
	"errors"
	"math"
)

// ErrUnknownDistanceKind is returned when an unknown distance kind is provided to NewDistance.
var ErrUnknownDistanceKind = errors.New("unknown distance kind")

// ErrZeroVector is returned when a zero vector is provided for a metric that doesn't support it.
var ErrZeroVector = errors.New("zero vector not allowed for this metric")

// DistanceKind represents the type of distance metric to use for vector comparisons.
// Different distance metrics are suitable for different use cases:
// - Euclidean (L2): Measures absolute spatial distance between points
// - L2Squared: Squared Euclidean distance (faster, preserves ordering)
// - Cosine: Measures angular similarity, independent of magnitude
// - Dot: Negated inner product, for maximum-inner-product search
type DistanceKind string

const (
	// Euclidean (L2) distance measures the straight-line distance between two points.
	// Use this when the magnitude of vectors matters.
	// Formula: sqrt(sum((a[i] - b[i])^2))
	Euclidean DistanceKind = "l2"

	// L2Squared (squared Euclidean) distance measures the squared distance between two points.
	// This is faster than L2 as it avoids the sqrt operation.
	// Use this when you only need to compare distances (ordering is preserved).
	// Formula: sum((a[i] - b[i])^2)
	L2Squared DistanceKind = "l2_squared"

	// Cosine distance measures the angular difference between vectors (1 - cosine similarity).
	// Use this when you care about direction but not magnitude (e.g., text embeddings).
	// Formula: 1 - (dot(a,b) / (||a|| * ||b||))
	// Range: [0, 2] where 0 = identical direction, 1 = orthogonal, 2 = opposite
	Cosine DistanceKind = "cosine"

	// Dot distance is the negated inner product, so that smaller still means
	// more similar. Use this for maximum-inner-product search over vectors
	// whose magnitude carries meaning (e.g., unnormalized embeddings).
	// Formula: -dot(a, b)
	// Note: only non-negative when inputs are normalized; graph search
	// assumes the configured metric never goes negative for your data.
	Dot DistanceKind = "dot"
)

// Singleton instances of distance strategies.
// These are stateless and can be safely reused across goroutines.
var (
	euclideanDistanceImpl = euclidean{}
	l2SquaredDistanceImpl = l2Squared{}
	cosineDistanceImpl    = cosine{}
	dotDistanceImpl       = dot{}
)

// Distance is the interface for computing distances between vectors.
// Implementations provide different distance metrics for vector similarity search.
//
// The graph core never switches on DistanceKind; it only calls through this
// interface, so a new metric plugs in without touching any graph code.
type Distance interface {
	// Calculate computes the distance between two vectors a and b.
	// The vectors must have the same dimensionality.
	// Returns a float32 representing the distance (lower values = more similar).
	Calculate(a, b []float32) float32

	// PreprocessInPlace preprocesses the target vector in-place for the distance metric.
	// For cosine distance, this normalizes the vector to unit length.
	// For the other metrics, this is a no-op.
	// Returns an error if the vector is invalid for this metric (e.g., zero vector for cosine).
	PreprocessInPlace(target []float32) error

	// Preprocess preprocesses the target vector for the distance metric, returning a new vector.
	// For cosine distance, this returns a normalized copy.
	// For the other metrics, this returns the original vector unchanged.
	// Returns an error if the vector is invalid for this metric (e.g., zero vector for cosine).
	Preprocess(target []float32) ([]float32, error)
}

// NewDistance returns a singleton Distance implementation for the specified metric type.
// The returned instances are stateless and safe for concurrent use across goroutines.
// Returns ErrUnknownDistanceKind if the distance kind is not recognized.
//
// Example:
//
//	dist, err := lance.NewDistance(lance.Euclidean)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	distance := dist.Calculate([]float32{1, 2, 3}, []float32{4, 5, 6})
func NewDistance(t DistanceKind) (Distance, error) {
	switch t {
	case Euclidean:
		return euclideanDistanceImpl, nil
	case L2Squared:
		return l2SquaredDistanceImpl, nil
	case Cosine:
		return cosineDistanceImpl, nil
	case Dot:
		return dotDistanceImpl, nil
	default:
		return nil, ErrUnknownDistanceKind
	}
}

// euclidean implements the Distance interface using Euclidean (L2) distance.
// This measures the straight-line distance between two points in n-dimensional space.
type euclidean struct{}

// Calculate computes the Euclidean (L2) distance between two vectors.
// Formula: sqrt(sum((a[i] - b[i])^2))
// Time complexity: O(n) where n is the vector dimension
func (e euclidean) Calculate(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return float32(math.Sqrt(float64(sum)))
}

// PreprocessInPlace is a no-op for euclidean distance.
func (e euclidean) PreprocessInPlace(target []float32) error {
	return nil
}

// Preprocess is a no-op for euclidean distance, returning the vector unchanged.
func (e euclidean) Preprocess(target []float32) ([]float32, error) {
	return target, nil
}

// l2Squared implements the Distance interface using squared Euclidean (L2²) distance.
// This is faster than euclidean distance as it avoids the sqrt operation.
// The ordering of distances is preserved, so this is suitable for k-NN search.
type l2Squared struct{}

// Calculate computes the squared Euclidean (L2²) distance between two vectors.
// Formula: sum((a[i] - b[i])^2)
// Time complexity: O(n) where n is the vector dimension
func (l l2Squared) Calculate(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// PreprocessInPlace is a no-op for L2 squared distance.
func (l l2Squared) PreprocessInPlace(target []float32) error {
	return nil
}

// Preprocess is a no-op for L2 squared distance, returning the vector unchanged.
func (l l2Squared) Preprocess(target []float32) ([]float32, error) {
	return target, nil
}

// cosine implements the Distance interface using cosine distance.
// This measures angular similarity between vectors, independent of their magnitude.
type cosine struct{}

// Calculate computes cosine distance between two vectors.
// Assumes both vectors are pre-normalized to unit length.
// For normalized vectors: cosine_distance = 1 - dot(a, b)
// Time complexity: O(n) where n is the vector dimension
func (c cosine) Calculate(a, b []float32) float32 {
	// For normalized vectors, cosine distance is simply 1 - dot product
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}

	// Clamp to [-1, 1] to handle floating point precision errors
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}

	return 1 - dot
}

// PreprocessInPlace normalizes the vector in-place to unit length for cosine distance.
// Returns ErrZeroVector if the vector has zero magnitude.
// Time complexity: O(n) where n is the vector dimension
func (c cosine) PreprocessInPlace(target []float32) error {
	// Compute norm
	var sum float32
	for _, x := range target {
		sum += x * x
	}
	norm := float32(math.Sqrt(float64(sum)))

	// Zero vectors are undefined for cosine similarity
	if norm == 0 {
		return ErrZeroVector
	}

	// Normalize in-place
	scale := 1.0 / norm
	for i := range target {
		target[i] *= scale
	}

	return nil
}

// Preprocess returns a normalized copy of the vector for cosine distance.
// Returns ErrZeroVector if the vector has zero magnitude.
// Time complexity: O(n) where n is the vector dimension
func (c cosine) Preprocess(target []float32) ([]float32, error) {
	// Compute norm
	var sum float32
	for _, x := range target {
		sum += x * x
	}
	norm := float32(math.Sqrt(float64(sum)))

	// Zero vectors are undefined for cosine similarity
	if norm == 0 {
		return nil, ErrZeroVector
	}

	// Create normalized copy
	result := make([]float32, len(target))
	scale := 1.0 / norm
	for i := range target {
		result[i] = target[i] * scale
	}

	return result, nil
}

// dot implements the Distance interface using negated inner product.
type dot struct{}

// Calculate computes the negated inner product between two vectors.
// Formula: -sum(a[i] * b[i])
// Time complexity: O(n) where n is the vector dimension
func (d dot) Calculate(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return -sum
}

// PreprocessInPlace is a no-op for dot distance.
func (d dot) PreprocessInPlace(target []float32) error {
	return nil
}

// Preprocess is a no-op for dot distance, returning the vector unchanged.
func (d dot) Preprocess(target []float32) ([]float32, error) {
	return target, nil
}

// ============================================================================
// Public utility functions
// ============================================================================

// Norm computes the L2 norm (Euclidean length/magnitude) of a vector.
//
// Formula: sqrt(sum(v[i]^2))
//
// Example:
//
//	v := []float32{3, 4}
//	length := lance.Norm(v)  // Returns 5.0
func Norm(v []float32) float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	return float32(math.Sqrt(float64(sum)))
}

// Normalize returns a new vector with the same direction as v but with unit
// length (magnitude = 1). The original vector is not modified.
//
// Special case: a zero vector is returned unchanged to avoid NaN values.
//
// Example:
//
//	v := []float32{3, 4}
//	unit := lance.Normalize(v)  // Returns [0.6, 0.8]
func Normalize(v []float32) []float32 {
	norm := Norm(v)

	result := make([]float32, len(v))
	if norm == 0 {
		copy(result, v)
		return result
	}

	scale := 1.0 / norm
	for i := range v {
		result[i] = v[i] * scale
	}
	return result
}
