// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecops

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DenseVector is a Vector backed by a gonum.org/v1/gonum/mat.VecDense. It is
// the natural representation for finite-dimensional numeric state, and is
// the representation required by the Direct and Krylov LinearSolver
// variants in package linalg (Krylov accepts any Flattener, but Direct
// requires the dense matrix form that only makes sense next to a
// DenseVector-shaped unknown).
type DenseVector struct {
	v *mat.VecDense
}

// NewDenseVector returns a DenseVector of length n. If data is non-nil its
// length must equal n and it is used as the initial backing values.
func NewDenseVector(n int, data []float64) *DenseVector {
	return &DenseVector{v: mat.NewVecDense(n, data)}
}

// WrapDense returns a DenseVector sharing storage with v.
func WrapDense(v *mat.VecDense) *DenseVector { return &DenseVector{v: v} }

// Raw returns the underlying *mat.VecDense.
func (d *DenseVector) Raw() *mat.VecDense { return d.v }

func (d *DenseVector) Len() int          { return d.v.Len() }
func (d *DenseVector) At(i int) float64  { return d.v.AtVec(i) }
func (d *DenseVector) Set(i int, v float64) { d.v.SetVec(i, v) }

func (d *DenseVector) Dot(x Vector) float64 {
	return mat.Dot(d.v, rawOf(x))
}

func (d *DenseVector) Norm() float64 {
	return mat.Norm(d.v, 2)
}

func (d *DenseVector) NormInf() float64 {
	return mat.Norm(d.v, math.Inf(1))
}

// AddScaled performs d ← α·x + d.
func (d *DenseVector) AddScaled(alpha float64, x Vector) {
	d.v.AddScaledVec(d.v, alpha, rawOf(x))
}

// Combine performs d ← α·x + β·d.
func (d *DenseVector) Combine(alpha float64, x Vector, beta float64) {
	var scaled mat.VecDense
	scaled.ScaleVec(beta, d.v)
	d.v.AddScaledVec(&scaled, alpha, rawOf(x))
}

func (d *DenseVector) Scale(beta float64) {
	d.v.ScaleVec(beta, d.v)
}

func (d *DenseVector) Clone() Vector {
	var c mat.VecDense
	c.CloneVec(d.v)
	return &DenseVector{v: &c}
}

func (d *DenseVector) Flatten(dst []float64) {
	for i := 0; i < d.v.Len(); i++ {
		dst[i] = d.v.AtVec(i)
	}
}

func (d *DenseVector) Unflatten(src []float64) {
	for i, s := range src {
		d.v.SetVec(i, s)
	}
}

// rawOf returns the *mat.VecDense backing x when x is a *DenseVector, or
// copies x's components into a freshly allocated one otherwise. The slow
// path exists so that DenseVector can still interoperate (e.g. in tests, or
// in mixed-Vector FoldProblem unknowns) with other Vector implementations.
func rawOf(x Vector) *mat.VecDense {
	if d, ok := x.(*DenseVector); ok {
		return d.v
	}
	raw := mat.NewVecDense(x.Len(), nil)
	for i := 0; i < x.Len(); i++ {
		raw.SetVec(i, x.At(i))
	}
	return raw
}
