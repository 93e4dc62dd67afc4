// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package fold implements minimally augmented Newton refinement of a fold
point detected by package continuation (spec.md §4.6).

A fold point satisfies F(x, p) = 0 with J(x, p) singular. spec.md §4.6
introduces the augmented function

	G(x, ℓ) = ( F(x, p) + ℓ·a ; ⟨b, w(x, p)⟩ )   where J(x, p)·w = a

to avoid tracking the singular Jacobian directly, stating that ℓ = 0 and
⟨b, w⟩ = 0 characterise the fold. Taken literally with p pinned at the
marker's bracketed estimate, G has N+1 equations for the N+2 unknowns
(x, p, ℓ); pinning p instead leaves an N+1 system in (x, ℓ) that is
generically unsolvable, because ⟨b, w(x,p)⟩ = 0 only has a solution for the
one value of p at which J is genuinely singular. Refine therefore drops ℓ as
an iterated unknown — it is 0 at the fold by construction, matching spec.md's
own characterisation — and solves the reduced, generically well-posed (N+1)
system in (x, p) directly:

	F(x, p)        = 0
	⟨b, w(x, p)⟩   = 0,   J(x, p)·w = a

via the same bordering-lemma elimination used by package tangent and
package continuation's corrector, reported here as a standalone routine
because its bottom-row coefficients (∂⟨b,w⟩/∂x, ∂⟨b,w⟩/∂p) are not the
θ/N-weighted arclength coefficients those two packages share, so the
θ/N-coupled bordered.Solve does not fit this instance of the lemma.
*/
package fold

import (
	"fmt"
	"math"

	"github.com/arclen/pacl/continuation"
	"github.com/arclen/pacl/fdiff"
	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/newton"
	"github.com/arclen/pacl/vecops"
)

// Problem bundles the user-supplied residual, Jacobian, and fixed fold
// vectors needed to refine a fold point.
type Problem struct {
	// F and J are the same residual/Jacobian used by the continuation run
	// that produced the fold marker.
	F continuation.Residual
	J continuation.Jacobian

	// A and B are fixed vectors spanning the approximate null and
	// left-null space of J at the fold.
	A, B vecops.Vector

	// Solver is the LinearSolver used for the auxiliary w-solve and the
	// bordered Newton step.
	Solver linalg.Solver

	// JAdj, if non-nil, computes the directional derivative of J(x,p)·w
	// in direction dx — i.e. (∂J/∂x · dx)·w — letting the ⟨b,w⟩ row of
	// G's Jacobian be built without re-solving J(x+h·eᵢ,p)·w = a from
	// scratch for every column (spec.md §4.6: "if a user-supplied
	// second-derivative operator... is available, use it for accuracy
	// and speed"). Nil falls back to finite differences.
	JAdj func(x vecops.Vector, p float64, w, dx vecops.Vector) (vecops.Vector, error)

	// FDStep is the finite-difference step used for every derivative this
	// package approximates by difference quotient. Zero means 1e-8
	// (spec.md §4.6's fallback step).
	FDStep float64
}

// FoldPoint is the refined fold: a solution x at parameter p, with L
// reported as 0 (spec.md §4.6: ℓ = 0 characterises the fold, so Refine does
// not iterate it as a free unknown — see the package doc comment).
type FoldPoint struct {
	X vecops.Vector
	P float64
	L float64
}

func (p Problem) fdStep() float64 {
	if p.FDStep == 0 {
		return 1e-8
	}
	return p.FDStep
}

// w solves J·w = a.
func (p Problem) w(sys linalg.System) (vecops.Vector, error) {
	res, err := p.Solver.Solve(sys, p.A)
	if err != nil || !res.Converged {
		return nil, fmt.Errorf("fold: solving J*w = a: %w", err)
	}
	return res.X, nil
}

// cRow builds ∂⟨b,w⟩/∂x, one column at a time, given the already-evaluated
// w and bw = ⟨b, w⟩ at the current (x, p).
func (p Problem) cRow(x vecops.Vector, pp float64, w vecops.Vector, bw float64) (vecops.Vector, error) {
	n := x.Len()
	c := x.Clone()
	h := p.fdStep()

	for i := 0; i < n; i++ {
		if p.JAdj != nil {
			dir := x.Clone()
			dir.Scale(0)
			dir.Set(i, 1)
			rhs, err := p.JAdj(x, pp, w, dir)
			if err != nil {
				return nil, fmt.Errorf("fold: JAdj evaluation: %w", err)
			}
			rhs.Scale(-1)
			sys, err := p.J(x, pp)
			if err != nil {
				return nil, fmt.Errorf("fold: jacobian evaluation: %w", err)
			}
			res, err := p.Solver.Solve(sys, rhs)
			if err != nil || !res.Converged {
				return nil, fmt.Errorf("fold: solving dw/dx_%d: %w", i, err)
			}
			c.Set(i, p.B.Dot(res.X))
			continue
		}

		g := func(xiTrial float64) (float64, error) {
			xh := x.Clone()
			xh.Set(i, xiTrial)
			sysH, err := p.J(xh, pp)
			if err != nil {
				return 0, fmt.Errorf("fold: jacobian evaluation: %w", err)
			}
			wh, err := p.w(sysH)
			if err != nil {
				return 0, err
			}
			return p.B.Dot(wh), nil
		}
		ci, err := fdiff.Scalar(g, x.At(i), bw, h)
		if err != nil {
			return nil, err
		}
		c.Set(i, ci)
	}
	return c, nil
}

// dBwDp approximates ∂⟨b,w⟩/∂p by one-sided finite difference.
func (p Problem) dBwDp(x vecops.Vector, pp float64, bw float64) (float64, error) {
	g := func(ppTrial float64) (float64, error) {
		sysH, err := p.J(x, ppTrial)
		if err != nil {
			return 0, fmt.Errorf("fold: jacobian evaluation: %w", err)
		}
		wh, err := p.w(sysH)
		if err != nil {
			return 0, err
		}
		return p.B.Dot(wh), nil
	}
	return fdiff.Scalar(g, pp, bw, p.fdStep())
}

// solveBordered applies the bordering lemma to
//
//	[ J  fp ] [dx]   [f]
//	[ cᵀ d  ] [dp] = [g]
//
// by two solves against sys rather than assembling the (N+1)×(N+1) matrix,
// the same elimination package bordered performs, specialised here to raw
// (unweighted) bottom-row coefficients c, d instead of the θ/N arclength
// weighting that package's Solve couples to its rowScalar.
func (p Problem) solveBordered(sys linalg.System, f, fp, c vecops.Vector, d, g float64) (dx vecops.Vector, dp float64, err error) {
	ru, err := p.Solver.Solve(sys, f)
	if err != nil || !ru.Converged {
		return nil, 0, fmt.Errorf("fold: solving J*u = F: %w", err)
	}
	rv, err := p.Solver.Solve(sys, fp)
	if err != nil || !rv.Converged {
		return nil, 0, fmt.Errorf("fold: solving J*v = Fp: %w", err)
	}

	cDotU := c.Dot(ru.X)
	cDotV := c.Dot(rv.X)
	denom := d - cDotV
	if denom == 0 {
		return nil, 0, fmt.Errorf("fold: bordering lemma breakdown (zero divisor)")
	}

	dp = (g - cDotU) / denom
	dx = ru.X.Clone()
	dx.Combine(-dp, rv.X, 1)
	return dx, dp, nil
}

// Refine runs newtonFold (spec.md §4.6) starting from the fold marker at
// branch.Markers[markerIndex], jointly correcting (x, p) until F(x,p) = 0
// and ⟨b, w(x,p)⟩ = 0 (see the package doc comment for why ℓ is not an
// iterated unknown here).
func Refine(branch *continuation.Branch, markerIndex int, prob Problem, opts newton.Options) (FoldPoint, []float64, bool, error) {
	if markerIndex < 0 || markerIndex >= len(branch.Markers) {
		return FoldPoint{}, nil, false, ErrMarkerOutOfRange
	}
	marker := branch.Markers[markerIndex]
	if marker.Kind != continuation.MarkerFold {
		return FoldPoint{}, nil, false, ErrNotAFoldMarker
	}
	seed := branch.Points[marker.Index]

	tol := opts.Tol
	if tol == 0 {
		tol = 1e-8
	}
	maxIter := opts.MaxIter
	if maxIter == 0 {
		maxIter = 20
	}
	fdStep := prob.fdStep()

	x := seed.X.Clone()
	p := marker.BracketedParameter

	eval := func() (fx vecops.Vector, bw float64, w vecops.Vector, sys linalg.System, err error) {
		fx, ferr := prob.F(x, p)
		if ferr != nil {
			return nil, 0, nil, nil, fmt.Errorf("fold: residual evaluation: %w", ferr)
		}
		sys, jerr := prob.J(x, p)
		if jerr != nil {
			return nil, 0, nil, nil, fmt.Errorf("fold: jacobian evaluation: %w", jerr)
		}
		w, werr := prob.w(sys)
		if werr != nil {
			return nil, 0, nil, nil, werr
		}
		bw = prob.B.Dot(w)
		return fx, bw, w, sys, nil
	}

	fx, bw, w, sys, err := eval()
	if err != nil {
		return FoldPoint{}, nil, false, err
	}
	n := math.Hypot(vecops.NormOf(fx), bw)
	history := []float64{n}
	if n <= tol {
		return FoldPoint{X: x, P: p}, history, true, nil
	}

	for k := 1; k <= maxIter; k++ {
		fp, err := fdiff.Vector(func(pp float64) (vecops.Vector, error) { return prob.F(x, pp) }, p, fx, fdStep)
		if err != nil {
			return FoldPoint{X: x, P: p}, history, false, fmt.Errorf("fold: parameter derivative: %w", err)
		}
		c, err := prob.cRow(x, p, w, bw)
		if err != nil {
			return FoldPoint{X: x, P: p}, history, false, err
		}
		dBwDp, err := prob.dBwDp(x, p, bw)
		if err != nil {
			return FoldPoint{X: x, P: p}, history, false, err
		}

		dx, dp, err := prob.solveBordered(sys, fx, fp, c, dBwDp, bw)
		if err != nil {
			return FoldPoint{X: x, P: p}, history, false, fmt.Errorf("%w: %v", newton.ErrLinearSolveFailure, err)
		}

		x.AddScaled(-1, dx)
		p -= dp

		fx, bw, w, sys, err = eval()
		if err != nil {
			return FoldPoint{X: x, P: p}, history, false, err
		}
		n = math.Hypot(vecops.NormOf(fx), bw)
		if !isFinite(n) {
			return FoldPoint{X: x, P: p}, append(history, n), false, newton.ErrNonFinite
		}
		history = append(history, n)
		if n <= tol {
			return FoldPoint{X: x, P: p}, history, true, nil
		}
	}

	return FoldPoint{X: x, P: p}, history, false, newton.ErrMaxIterations
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
