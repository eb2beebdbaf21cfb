package schema

import "fmt"

// DistanceFunction names a vector similarity metric. The string value is
// the metric name SQL Server's VECTOR_DISTANCE function expects.
type DistanceFunction string

const (
	// DistanceCosine is cosine distance: smaller is more similar.
	DistanceCosine DistanceFunction = "cosine"

	// DistanceEuclidean is euclidean (L2) distance: smaller is more similar.
	DistanceEuclidean DistanceFunction = "euclidean"

	// DistanceDotProduct is dot product similarity: larger is more similar.
	DistanceDotProduct DistanceFunction = "dot"

	// DefaultDistance is used when a vector property declares no metric.
	DefaultDistance = DistanceCosine
)

// Valid reports whether the metric is one the target store supports.
func (d DistanceFunction) Valid() bool {
	switch d {
	case DistanceCosine, DistanceEuclidean, DistanceDotProduct:
		return true
	default:
		return false
	}
}

// Ascending reports the natural result order for the metric's score column:
// true for distance metrics (closer to zero means more similar), false for
// similarity metrics (larger means more similar). The direction is an
// explicit property of each metric, never inferred from its name.
func (d DistanceFunction) Ascending() bool {
	switch d {
	case DistanceDotProduct:
		return false
	default:
		return true
	}
}

// ParseDistanceFunction converts a metric name into a DistanceFunction.
// The empty string yields DefaultDistance.
func ParseDistanceFunction(s string) (DistanceFunction, error) {
	switch s {
	case "":
		return DefaultDistance, nil
	case "cosine":
		return DistanceCosine, nil
	case "euclidean", "l2":
		return DistanceEuclidean, nil
	case "dot", "dotproduct":
		return DistanceDotProduct, nil
	default:
		return "", fmt.Errorf("unknown distance function %q", s)
	}
}
