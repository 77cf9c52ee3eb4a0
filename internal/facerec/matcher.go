package facerec

import (
	"math"

	"github.com/facegate/facegate/internal/model"
)

// DefaultTolerance is the descriptor distance below which two faces are
// treated as the same person. It is the conventional default for
// 128-dimensional dlib descriptors.
const DefaultTolerance = 0.6

// Matcher decides whether two face descriptors belong to the same
// person. The decision is a fixed-tolerance distance check, not
// equality; no similarity score is exposed to callers.
type Matcher struct {
	tolerance float64
}

// NewMatcher creates a Matcher with the given acceptance tolerance.
// Non-positive values fall back to DefaultTolerance.
func NewMatcher(tolerance float64) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{tolerance: tolerance}
}

// Match reports whether the two descriptors are within the acceptance
// tolerance.
func (m *Matcher) Match(a, b model.Descriptor) bool {
	return Distance(a, b) <= m.tolerance
}

// Distance returns the Euclidean distance between two descriptors.
func Distance(a, b model.Descriptor) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
