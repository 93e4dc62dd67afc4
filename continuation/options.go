// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuation

import (
	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/newton"
	"github.com/arclen/pacl/tangent"
	"github.com/arclen/pacl/vecops"
)

// TangentAlgorithm selects the predictor used to update the branch tangent
// at the end of each accepted step (spec.md §4.4).
type TangentAlgorithm int

const (
	// TangentSecant uses the two most recently accepted points.
	TangentSecant TangentAlgorithm = iota
	// TangentBordered solves the linearised tangent condition directly.
	TangentBordered
)

// Finalise is called once per accepted step with the new iterate, its
// tangent, the step index, and the branch accumulated so far. Returning
// false aborts the run cleanly after the step has already been appended
// (spec.md §7's UserAbort).
type Finalise func(x vecops.Vector, t tangent.Tangent, stepIndex int, branch *Branch) bool

// Options configures one continuation run (spec.md §3's ContinuationOptions).
// It is a plain value; per spec.md §9's resolved design note, callers pass
// overrides explicitly rather than mutating a shared record between runs.
type Options struct {
	// Ds0, DsMin, DsMax bound the pseudo-arclength step size.
	Ds0, DsMin, DsMax float64

	// GrowthFactor divides ds on a successful, fast-converging step
	// (ds ← min(ds/GrowthFactor, DsMax)); must be in (0, 1].
	GrowthFactor float64

	// ShrinkFactor multiplies ds on a rejected step
	// (ds ← max(ds*ShrinkFactor, DsMin)). Zero means GrowthFactor².
	ShrinkFactor float64

	// Theta is the arclength-scaling weight θ ∈ (0, 1).
	Theta float64

	// PMin, PMax are hard parameter bounds; the run terminates cleanly
	// when p crosses either.
	PMin, PMax float64

	// MaxSteps caps the number of accepted steps.
	MaxSteps int

	// DesiredIter is the iteration-count threshold at or below which a
	// converged corrector step is accepted with step growth; a slower
	// convergence is treated as a rejection even though Newton succeeded
	// (spec.md §4.5 step 3).
	DesiredIter int

	// Newton configures the corrector's inner Newton iteration.
	Newton newton.Options

	// Solver is the inner LinearSolver used by both the tangent predictor
	// and the corrector's bordering-lemma solves.
	Solver linalg.Solver

	// DetectFold enables fold-event monitoring via tangent sign changes.
	DetectFold bool

	// DoArcLengthScaling toggles automatic rescaling of Theta as the
	// branch's (x, p) balance shifts, via the package-level rescaleTheta
	// helper invoked after every accepted tangent update.
	DoArcLengthScaling bool

	// TangentAlgorithm selects the predictor used after each accepted step.
	TangentAlgorithm TangentAlgorithm

	// Finalise, if non-nil, is invoked after every accepted step.
	Finalise Finalise

	// NormFn overrides the norm used for the convergence check of the
	// initial Newton solve at (x0, p0); nil means the Euclidean norm. The
	// corrector's convergence check always uses the Euclidean norm of the
	// combined (F, arclength) residual and does not read NormFn.
	NormFn func(vecops.Vector) float64

	// FDStep is the finite-difference step used for ∂F/∂p (spec.md §4.4).
	// Zero means fdiff.DefaultStep.
	FDStep float64
}

func setDefaults(o Options) Options {
	if o.GrowthFactor == 0 {
		o.GrowthFactor = 0.5
	}
	if o.ShrinkFactor == 0 {
		o.ShrinkFactor = o.GrowthFactor * o.GrowthFactor
	}
	if o.Theta == 0 {
		o.Theta = 0.5
	}
	if o.DesiredIter == 0 {
		o.DesiredIter = 4
	}
	if o.Ds0 == 0 {
		o.Ds0 = o.DsMax
	}
	return o
}
