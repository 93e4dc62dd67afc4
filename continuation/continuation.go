// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package continuation implements the pseudo-arclength continuation loop
(spec.md §4.5): predict, correct, accept or reject, update the tangent,
detect fold events, and invoke a user finalise hook, once per step, until
the branch leaves [PMin, PMax], MaxSteps is reached, or the run aborts.
*/
package continuation

import (
	"errors"
	"fmt"
	"math"

	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/newton"
	"github.com/arclen/pacl/tangent"
	"github.com/arclen/pacl/vecops"
)

// Run traces a branch of F(x, p) = 0 from (x0, p0), returning the
// accumulated branch and the final solution.
//
// Per spec.md §7, Run never returns an error for DomainExit or UserAbort —
// those are clean terminations reported as a nil error with the branch
// accumulated so far. A non-nil error is returned for ErrInitialNewtonFailed,
// ErrStepSizeFloor, a non-finite corrector residual (wrapping
// newton.ErrNonFinite), and a failure of the initial tangent or of a tangent
// update. Other corrector failures are treated as step rejections.
func Run(F Residual, J Jacobian, x0 vecops.Vector, p0 float64, opts Options) (*Branch, vecops.Vector, error) {
	opts = setDefaults(opts)
	branch := &Branch{}

	init, err := newton.Solve(
		func(x vecops.Vector) (vecops.Vector, error) { return F(x, p0) },
		func(x vecops.Vector) (linalg.System, error) { return J(x, p0) },
		x0, opts.Solver, opts.Newton, opts.NormFn,
	)
	if err != nil || !init.Converged {
		return branch, x0, fmt.Errorf("%w: %v", ErrInitialNewtonFailed, err)
	}

	x := init.X
	p := p0
	branch.Append(Point{X: x.Clone(), P: p, Ds: 0, NormX: vecops.NormOf(x)})

	theta := opts.Theta
	t0, err := initialTangent(F, J, opts, x, p, theta)
	if err != nil {
		return branch, x, fmt.Errorf("continuation: %w", err)
	}
	dx, dp := t0.Dx, t0.Dp

	ds := opts.Ds0
	rejectedAtFloor := false

	for step := 0; step < opts.MaxSteps; {
		xPred := x.Clone()
		xPred.AddScaled(ds, dx)
		pPred := p + ds*dp

		xNew, pNew, hist, converged, cerr := correct(F, J, opts.Solver, xPred, pPred, x, p, dx, dp, ds, theta, opts.FDStep, opts.Newton)
		tookTooLong := converged && len(hist)-1 > opts.DesiredIter

		if errors.Is(cerr, newton.ErrNonFinite) {
			return branch, x, fmt.Errorf("continuation: corrector: %w", cerr)
		}
		if cerr != nil || !converged || tookTooLong {
			if math.Abs(ds) <= opts.DsMin {
				if rejectedAtFloor {
					return branch, x, ErrStepSizeFloor
				}
				rejectedAtFloor = true
			}
			ds = shrinkStep(ds, opts.ShrinkFactor, opts.DsMin)
			continue
		}
		rejectedAtFloor = false

		pPrevStep := p
		dsUsed := ds
		x, p = xNew, pNew
		ds = growStep(ds, opts.GrowthFactor, opts.DsMax)

		if p < opts.PMin || p > opts.PMax {
			branch.Append(Point{X: x.Clone(), P: p, Ds: dsUsed, NormX: vecops.NormOf(x)})
			return branch, x, nil
		}

		newT, err := updateTangent(F, J, opts, x, p, branch.Last(), dsUsed, tangent.Tangent{Dx: dx, Dp: dp}, theta)
		if err != nil {
			return branch, x, fmt.Errorf("continuation: tangent update: %w", err)
		}
		prevDp := dp
		dx, dp = newT.Dx, newT.Dp
		if opts.DoArcLengthScaling {
			theta = rescaleTheta(dx, dp)
		}

		step++
		branch.Append(Point{X: x.Clone(), P: p, Ds: dsUsed, NormX: vecops.NormOf(x)})

		if opts.DetectFold {
			if bracketP, found := detectFold(prevDp, dp, pPrevStep, p); found {
				branch.AddMarker(Marker{
					Index:              len(branch.Points) - 1,
					Kind:               MarkerFold,
					BracketedParameter: bracketP,
				})
			}
		}

		if opts.Finalise != nil && !opts.Finalise(x, newT, step, branch) {
			return branch, x, nil
		}
	}

	return branch, x, nil
}

// growStep and shrinkStep rescale ds's magnitude while preserving its sign,
// which encodes the continuation direction chosen by Options.Ds0 (spec.md §3
// treats dsmin/dsmax as bounds on the step length, not on a signed ds).
func growStep(ds, growth, dsMax float64) float64 {
	mag := math.Abs(ds) / growth
	if mag > dsMax {
		mag = dsMax
	}
	return math.Copysign(mag, ds)
}

func shrinkStep(ds, shrink, dsMin float64) float64 {
	mag := math.Abs(ds) * shrink
	if mag < dsMin {
		mag = dsMin
	}
	return math.Copysign(mag, ds)
}

// initialTangent computes the first tangent by the bordered algorithm
// against the arbitrary seed tangent (0, 1) (spec.md §4.5's Initialisation).
func initialTangent(F Residual, J Jacobian, opts Options, x vecops.Vector, p, theta float64) (tangent.Tangent, error) {
	fx, err := F(x, p)
	if err != nil {
		return tangent.Tangent{}, fmt.Errorf("initial residual evaluation: %w", err)
	}
	sys, err := J(x, p)
	if err != nil {
		return tangent.Tangent{}, fmt.Errorf("initial jacobian evaluation: %w", err)
	}
	fp, err := dFdp(F, x, p, fx, opts.FDStep)
	if err != nil {
		return tangent.Tangent{}, fmt.Errorf("initial parameter derivative: %w", err)
	}

	seedDx := x.Clone()
	seedDx.Scale(0)
	seed := tangent.Tangent{Dx: seedDx, Dp: 1}

	t, err := tangent.Bordered(opts.Solver, sys, fp, seed, theta)
	if err != nil {
		return tangent.Tangent{}, fmt.Errorf("initial tangent: %w", err)
	}
	return t, nil
}

// updateTangent advances the tangent after an accepted step, per
// spec.md §4.4, then applies the orientation rule against tPrev.
func updateTangent(F Residual, J Jacobian, opts Options, x vecops.Vector, p float64, xPrevPoint Point, dsPrev float64, tPrev tangent.Tangent, theta float64) (tangent.Tangent, error) {
	var t tangent.Tangent
	var err error

	switch opts.TangentAlgorithm {
	case TangentSecant:
		t, err = tangent.Secant(xPrevPoint.X, x, xPrevPoint.P, p, dsPrev, theta)
		if err != nil {
			return tangent.Tangent{}, fmt.Errorf("secant predictor: %w", err)
		}
	default:
		fx, ferr := F(x, p)
		if ferr != nil {
			return tangent.Tangent{}, fmt.Errorf("bordered tangent residual evaluation: %w", ferr)
		}
		sys, jerr := J(x, p)
		if jerr != nil {
			return tangent.Tangent{}, fmt.Errorf("bordered tangent jacobian evaluation: %w", jerr)
		}
		fp, derr := dFdp(F, x, p, fx, opts.FDStep)
		if derr != nil {
			return tangent.Tangent{}, fmt.Errorf("bordered tangent parameter derivative: %w", derr)
		}
		t, err = tangent.Bordered(opts.Solver, sys, fp, tPrev, theta)
		if err != nil {
			return tangent.Tangent{}, fmt.Errorf("bordered predictor: %w", err)
		}
	}

	return tangent.Orientation(t, tPrev, theta), nil
}

// rescaleTheta rebalances the arclength weight so the tangent's x- and
// p-components contribute equally to the weighted norm (spec.md §3's
// doArcLengthScaling), clamped away from the endpoints where the bordering
// lemma's weight/d coupling would degenerate into an unweighted x- or
// p-only metric.
func rescaleTheta(dx vecops.Vector, dp float64) float64 {
	const floor, ceiling = 0.05, 0.95
	n := float64(dx.Len())
	dxTerm := dx.Dot(dx) / n
	theta := dp * dp / (dp*dp + dxTerm)
	if theta < floor {
		theta = floor
	}
	if theta > ceiling {
		theta = ceiling
	}
	return theta
}
