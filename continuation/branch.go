// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuation

import "github.com/arclen/pacl/vecops"

// MarkerKind classifies a detected bifurcation marker (spec.md §3).
type MarkerKind int

const (
	MarkerUnknown MarkerKind = iota
	MarkerFold
	MarkerHopf
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerFold:
		return "fold"
	case MarkerHopf:
		return "hopf"
	default:
		return "unknown"
	}
}

// Point is one immutable point on a branch.
type Point struct {
	// X is the solution at this point.
	X vecops.Vector
	// P is the continuation parameter at this point.
	P float64
	// Ds is the arclength step that produced this point (0 for the seed).
	Ds float64
	// NormX is ‖X‖, cached at append time.
	NormX float64
}

// Marker records a detected bifurcation.
type Marker struct {
	// Index is the position in Branch.Points this marker was recorded at.
	Index int
	// Kind classifies the bifurcation.
	Kind MarkerKind
	// BracketedParameter is the interpolated parameter value at which the
	// test function is estimated to vanish.
	BracketedParameter float64
}

// Branch is the ordered sequence of points produced by one continuation run,
// plus any bifurcation markers detected along the way.
type Branch struct {
	Points  []Point
	Markers []Marker
}

// Append adds p to the branch.
func (b *Branch) Append(p Point) {
	b.Points = append(b.Points, p)
}

// Last returns the most recently appended point. It panics if the branch is
// empty, mirroring slice indexing semantics.
func (b *Branch) Last() Point {
	return b.Points[len(b.Points)-1]
}

// AddMarker records a bifurcation marker.
func (b *Branch) AddMarker(m Marker) {
	b.Markers = append(b.Markers, m)
}
