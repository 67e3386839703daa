// Package geometry associates canvas records with rendered elements by
// position and size.
//
// The rendering layer carries no stable identifier from a record to its
// on-screen element, so association is recomputed on every pass from the
// record's stored (x, y, width, height) against each element's rendered
// box. Sub-pixel layout makes exact equality unreliable; matching uses a
// small absolute tolerance instead.
package geometry

import "math"

// DefaultTolerance is the maximum absolute per-axis difference for two
// rectangles to be considered the same. Comparison is strict (<), so a
// difference of exactly the tolerance is not a match.
const DefaultTolerance = 0.5

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Matches reports whether other lies within tol of r on every axis.
func (r Rect) Matches(other Rect, tol float64) bool {
	return math.Abs(r.X-other.X) < tol &&
		math.Abs(r.Y-other.Y) < tol &&
		math.Abs(r.Width-other.Width) < tol &&
		math.Abs(r.Height-other.Height) < tol
}

// FirstMatch returns the index of the first candidate matching target.
// Callers that need exactly-one semantics use this; when several candidates
// share the same geometry the first one in slice order wins.
func FirstMatch(target Rect, candidates []Rect, tol float64) (int, bool) {
	for i, c := range candidates {
		if target.Matches(c, tol) {
			return i, true
		}
	}
	return -1, false
}

// AllMatches returns the indices of every candidate matching target.
// Used when one record may be represented by several surfaces at once
// (duplicated views); zero matches is a normal outcome, not an error.
func AllMatches(target Rect, candidates []Rect, tol float64) []int {
	var matches []int
	for i, c := range candidates {
		if target.Matches(c, tol) {
			matches = append(matches, i)
		}
	}
	return matches
}
