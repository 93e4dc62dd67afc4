// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuation

import (
	"fmt"
	"math"

	"github.com/arclen/pacl/bordered"
	"github.com/arclen/pacl/fdiff"
	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/newton"
	"github.com/arclen/pacl/vecops"
)

// Residual evaluates F(x, p).
type Residual func(x vecops.Vector, p float64) (vecops.Vector, error)

// Jacobian evaluates J(x, p), bound at (x, p).
type Jacobian func(x vecops.Vector, p float64) (linalg.System, error)

// dFdp approximates ∂F/∂p at (x, p) by one-sided finite difference, given
// the already-evaluated Fx = F(x, p).
func dFdp(F Residual, x vecops.Vector, p float64, fx vecops.Vector, step float64) (vecops.Vector, error) {
	if step == 0 {
		step = fdiff.DefaultStep
	}
	return fdiff.Vector(func(pp float64) (vecops.Vector, error) { return F(x, pp) }, p, fx, step)
}

// arclengthResidual evaluates the scalar pseudo-arclength equation
// θ·⟨x-xK, dx⟩/N + (1-θ)·(p-pK)·dp - ds (spec.md §4.5 step 2).
func arclengthResidual(x vecops.Vector, p float64, xK vecops.Vector, pK float64, dx vecops.Vector, dp, ds, theta float64) float64 {
	diff := x.Clone()
	diff.Combine(-1, xK, 1)
	n := float64(x.Len())
	return theta*diff.Dot(dx)/n + (1-theta)*(p-pK)*dp - ds
}

// correct runs the pseudo-arclength corrector (spec.md §4.5 step 2) from the
// predicted point (xPred, pPred), solving the bordered Newton system via the
// bordering lemma at each iteration rather than assembling the full
// (N+1)×(N+1) matrix. xK, pK is the previously accepted point; dx, dp is its
// tangent; ds is the target arclength step.
func correct(F Residual, J Jacobian, solver linalg.Solver, xPred vecops.Vector, pPred float64, xK vecops.Vector, pK float64, dx vecops.Vector, dp, ds, theta, fdStep float64, opts newton.Options) (xOut vecops.Vector, pOut float64, history []float64, converged bool, err error) {
	tol := opts.Tol
	if tol == 0 {
		tol = 1e-8
	}
	maxIter := opts.MaxIter
	if maxIter == 0 {
		maxIter = 20
	}

	x := xPred.Clone()
	p := pPred

	fx, err := F(x, p)
	if err != nil {
		return x, p, nil, false, fmt.Errorf("continuation: corrector residual evaluation: %w", err)
	}
	g := arclengthResidual(x, p, xK, pK, dx, dp, ds, theta)
	n := combinedNorm(fx, g)
	if !isFinite(n) {
		return x, p, []float64{n}, false, newton.ErrNonFinite
	}
	history = []float64{n}
	if n <= tol {
		return x, p, history, true, nil
	}

	for k := 1; k <= maxIter; k++ {
		sys, err := J(x, p)
		if err != nil {
			return x, p, history, false, fmt.Errorf("continuation: corrector jacobian evaluation: %w", err)
		}
		fp, err := dFdp(F, x, p, fx, fdStep)
		if err != nil {
			return x, p, history, false, fmt.Errorf("continuation: corrector parameter derivative: %w", err)
		}

		dxCorr, dpCorr, err := bordered.Solve(solver, sys, fx, fp, dx, dp, g, theta, x.Len())
		if err != nil {
			return x, p, history, false, fmt.Errorf("%w: %v", newton.ErrLinearSolveFailure, err)
		}

		x.AddScaled(-1, dxCorr)
		p -= dpCorr

		fx, err = F(x, p)
		if err != nil {
			return x, p, history, false, fmt.Errorf("continuation: corrector residual evaluation: %w", err)
		}
		g = arclengthResidual(x, p, xK, pK, dx, dp, ds, theta)
		n = combinedNorm(fx, g)
		if !isFinite(n) {
			return x, p, append(history, n), false, newton.ErrNonFinite
		}
		history = append(history, n)
		if n <= tol {
			return x, p, history, true, nil
		}
	}

	return x, p, history, false, newton.ErrMaxIterations
}

func combinedNorm(fx vecops.Vector, g float64) float64 {
	fn := vecops.NormOf(fx)
	return math.Hypot(fn, g)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
