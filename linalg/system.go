// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package linalg bridges the abstract Jacobian J(x) used throughout the
continuation core onto two concrete linear-solve strategies: a Direct dense
factorisation, and an iterative Krylov (GMRES) method that treats J as an
action-only operator. Both variants support the shifted system
(J + σI)·x = b without materialising σI.

This mirrors spec.md §4.2: "solve(J, b) → (x, converged, iterations)" and
"solve(J, b, σ) → (x, converged, iterations)".
*/
package linalg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/arclen/pacl/vecops"
)

// System represents the Jacobian J at a point, as an action-only linear
// operator. The core never needs more than this to drive a Krylov solve.
type System interface {
	// Dim returns the dimension n of the square system.
	Dim() int

	// MulVec computes dst = J·x. dst and x may not alias.
	MulVec(dst, x vecops.Vector)
}

// DenseSystem is a System that can also produce its concrete n×n matrix
// form, required by the Direct solver.
type DenseSystem interface {
	System

	// Dense returns the dense matrix form of J.
	Dense() *mat.Dense
}

// Result holds the outcome of one linear solve.
type Result struct {
	// X is the computed (or best-effort, if !Converged) solution.
	X vecops.Vector

	// Converged reports whether the solve met its tolerance within the
	// iteration budget. Direct solves are "converged" unless the matrix
	// is singular.
	Converged bool

	// Iterations is the number of iterations used (1 for Direct).
	Iterations int
}

// Solver solves J·x = b, and the shifted system (J + σI)·x = b.
type Solver interface {
	// Solve computes x such that sys·x = b.
	Solve(sys System, b vecops.Vector) (Result, error)

	// SolveShifted computes x such that (sys + σI)·x = b. A σ of exactly
	// zero must take the same fast path as Solve (spec.md §4.2).
	SolveShifted(sys System, b vecops.Vector, sigma float64) (Result, error)
}

// shiftedSystem wraps a System to represent (J + σI) without forming it
// explicitly; MulVec applies v ↦ J·v + σ·v as described in spec.md §4.2.
type shiftedSystem struct {
	inner System
	sigma float64
}

func (s shiftedSystem) Dim() int { return s.inner.Dim() }

func (s shiftedSystem) MulVec(dst, x vecops.Vector) {
	s.inner.MulVec(dst, x)
	dst.AddScaled(s.sigma, x)
}
