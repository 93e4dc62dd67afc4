// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sparse provides a minimal coordinate-format (triplet) sparse matrix,
used by package orbit to assemble the block-tridiagonal-plus-corner Jacobian
of the periodic-orbit collocation problem (spec.md §4.7).

gonum.org/v1/gonum/linsolve has an equivalent triplet type, but it lives
under linsolve/internal/triplet and cannot be imported outside that module;
this package reimplements the same coordinate-append-then-convert pattern
(see DESIGN.md), combined with the Start/Put naming used by gosl's
la.Triplet (dicksontsai-gosl/num/nlsolver.go).
*/
package sparse

import "gonum.org/v1/gonum/mat"

// entry is one non-zero coordinate.
type entry struct {
	i, j int
	v    float64
}

// Triplet is a coordinate-format sparse matrix assembled by repeated Put
// calls and consumed either as a dense matrix (for Direct linear solves) or
// as a matrix-vector action (for Krylov solves), via ToDense and MulVec
// respectively.
type Triplet struct {
	rows, cols int
	data       []entry
}

// NewTriplet returns an empty rows×cols Triplet.
func NewTriplet(rows, cols int) *Triplet {
	return &Triplet{rows: rows, cols: cols}
}

// Dims returns the shape of the matrix.
func (t *Triplet) Dims() (rows, cols int) { return t.rows, t.cols }

// Start clears any previously assembled entries, so the same Triplet value
// can be reused across Jacobian assemblies without reallocating.
func (t *Triplet) Start() { t.data = t.data[:0] }

// Put appends a non-zero at (i, j). Put does not check for duplicate
// coordinates; if the same (i, j) is put more than once, the values are
// summed when the matrix is consumed — the same accumulate-on-duplicate
// convention as gonum/mat's own Triplet-like assemblers.
func (t *Triplet) Put(i, j int, v float64) {
	if i < 0 || i >= t.rows || j < 0 || j >= t.cols {
		panic("sparse: index out of range")
	}
	if v == 0 {
		return
	}
	t.data = append(t.data, entry{i, j, v})
}

// ToDense returns the dense matrix form of t.
func (t *Triplet) ToDense() *mat.Dense {
	d := mat.NewDense(t.rows, t.cols, nil)
	for _, e := range t.data {
		d.Set(e.i, e.j, d.At(e.i, e.j)+e.v)
	}
	return d
}

// MulVec computes dst = t*x (or t^T*x if trans) over plain float64 slices.
func (t *Triplet) MulVec(dst, x []float64, trans bool) {
	for i := range dst {
		dst[i] = 0
	}
	if trans {
		for _, e := range t.data {
			dst[e.j] += e.v * x[e.i]
		}
		return
	}
	for _, e := range t.data {
		dst[e.i] += e.v * x[e.j]
	}
}
