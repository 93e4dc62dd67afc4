// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package tangent computes the predictor tangent (dx/ds, dp/ds) used to start
each pseudo-arclength continuation step (spec.md §4.4). Two predictors are
provided: Secant, a finite-difference approximation from the two most recent
accepted points, and Bordered, which solves the linearised tangent condition
directly against the current Jacobian via the shared bordering lemma in
package bordered.
*/
package tangent

import (
	"fmt"
	"math"

	"github.com/arclen/pacl/bordered"
	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/vecops"
)

// Tangent is a unit (in the weighted arclength norm) direction (Dx, Dp) in
// the augmented (x, p) space.
type Tangent struct {
	Dx vecops.Vector
	Dp float64
}

// Normalize rescales t so that its weighted arclength norm
// √(θ·‖Dx‖²/N + (1-θ)·Dp²) equals 1, matching the normalisation the
// continuation loop imposes on every predictor (spec.md §4.1's N(x,p,s)).
func Normalize(t Tangent, theta float64) Tangent {
	n := float64(t.Dx.Len())
	norm := weightedNorm(t.Dx, t.Dp, theta, n)
	if norm == 0 {
		return t
	}
	dx := t.Dx.Clone()
	dx.Scale(1 / norm)
	return Tangent{Dx: dx, Dp: t.Dp / norm}
}

func weightedNorm(dx vecops.Vector, dp, theta, n float64) float64 {
	sq := theta*dx.Dot(dx)/n + (1-theta)*dp*dp
	if sq < 0 {
		sq = 0
	}
	return math.Sqrt(sq)
}

// Secant builds the tangent from the two most recently accepted points
// (xPrev, pPrev) and (xCur, pCur), scaled by the previous step length dsPrev
// (spec.md §4.4, "secant predictor"). It is cheap but only first-order
// accurate and undefined at the very first step, where Bordered must be used
// instead.
func Secant(xPrev, xCur vecops.Vector, pPrev, pCur, dsPrev, theta float64) (Tangent, error) {
	if dsPrev == 0 {
		return Tangent{}, fmt.Errorf("tangent: Secant requires a nonzero previous step length")
	}
	dx := xCur.Clone()
	dx.Combine(-1, xPrev, 1)
	dx.Scale(1 / dsPrev)
	dp := (pCur - pPrev) / dsPrev
	return Normalize(Tangent{Dx: dx, Dp: dp}, theta), nil
}

// Bordered computes the tangent by solving the linearised condition
//
//	J·Dx + Fp·Dp = 0
//	θ/N·⟨Dx, Dx⟩ + (1-θ)·Dp·Dp = 1   (approximated by one lemma solve, see below)
//
// Rather than solving that nonlinear normalisation jointly, it follows
// spec.md §4.4's "bordered predictor": it fixes the previous tangent tPrev as
// the bordering row so the new (Dx, Dp) is picked out by
//
//	[ J    Fp  ] [Dx]   [0]
//	[ tPrevᵀ·W ] [Dp] = [1]
//
// (with W the θ/N, (1-θ) weighting), then renormalises the result. This is
// exactly the bordering lemma in package bordered with a zero top
// right-hand side, the previous tangent as the bottom row, and g = 1.
func Bordered(solver linalg.Solver, sys linalg.System, fp vecops.Vector, tPrev Tangent, theta float64) (Tangent, error) {
	n := fp.Len()
	zero := fp.Clone()
	zero.Scale(0)

	dx, dp, err := bordered.Solve(solver, sys, zero, fp, tPrev.Dx, tPrev.Dp, 1, theta, n)
	if err != nil {
		return Tangent{}, fmt.Errorf("tangent: bordered predictor: %w", err)
	}
	return Normalize(Tangent{Dx: dx, Dp: dp}, theta), nil
}

// Orientation flips the sign of tNew, if necessary, so that it points in the
// same direction along the branch as tPrev, per spec.md §4.4's
// "the predictor must not reverse direction": the weighted inner product
// θ·⟨Dx,DxPrev⟩/N + (1-θ)·Dp·DpPrev must stay positive.
func Orientation(tNew, tPrev Tangent, theta float64) Tangent {
	n := float64(tNew.Dx.Len())
	inner := theta*tNew.Dx.Dot(tPrev.Dx)/n + (1-theta)*tNew.Dp*tPrev.Dp
	if inner >= 0 {
		return tNew
	}
	dx := tNew.Dx.Clone()
	dx.Scale(-1)
	return Tangent{Dx: dx, Dp: -tNew.Dp}
}
