// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecops

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SeriesVector is a Vector backed directly by a []float64, operated on
// through gonum.org/v1/gonum/floats. It stands in for "coefficient vectors
// of function expansions" (spec.md §4.1) — e.g. the coefficients of a
// truncated spectral or basis-function expansion, where the natural
// representation is a flat slice rather than a gonum/mat.VecDense.
type SeriesVector struct {
	Data []float64
}

// NewSeriesVector returns a SeriesVector of length n.
func NewSeriesVector(n int) *SeriesVector {
	return &SeriesVector{Data: make([]float64, n)}
}

func (s *SeriesVector) Len() int             { return len(s.Data) }
func (s *SeriesVector) At(i int) float64     { return s.Data[i] }
func (s *SeriesVector) Set(i int, v float64) { s.Data[i] = v }

func (s *SeriesVector) Dot(x Vector) float64 {
	return floats.Dot(s.Data, sliceOf(x))
}

func (s *SeriesVector) Norm() float64 {
	return floats.Norm(s.Data, 2)
}

func (s *SeriesVector) NormInf() float64 {
	return floats.Norm(s.Data, math.Inf(1))
}

// AddScaled performs s ← α·x + s.
func (s *SeriesVector) AddScaled(alpha float64, x Vector) {
	floats.AddScaled(s.Data, alpha, sliceOf(x))
}

// Combine performs s ← α·x + β·s.
func (s *SeriesVector) Combine(alpha float64, x Vector, beta float64) {
	floats.Scale(beta, s.Data)
	floats.AddScaled(s.Data, alpha, sliceOf(x))
}

func (s *SeriesVector) Scale(beta float64) {
	floats.Scale(beta, s.Data)
}

func (s *SeriesVector) Clone() Vector {
	c := make([]float64, len(s.Data))
	copy(c, s.Data)
	return &SeriesVector{Data: c}
}

func (s *SeriesVector) Flatten(dst []float64) { copy(dst, s.Data) }
func (s *SeriesVector) Unflatten(src []float64) { copy(s.Data, src) }

// sliceOf returns the []float64 backing x when x is a *SeriesVector, or
// copies x's components into a fresh slice otherwise.
func sliceOf(x Vector) []float64 {
	if s, ok := x.(*SeriesVector); ok {
		return s.Data
	}
	out := make([]float64, x.Len())
	for i := range out {
		out[i] = x.At(i)
	}
	return out
}
