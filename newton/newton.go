// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package newton implements a damped Newton solver for F(x) = 0 over an
abstract vecops.Vector, using a pluggable linalg.Solver for the inner linear
system. This is spec.md §4.3's NewtonSolver. Package continuation uses it
for the initial solve at (x0, p0); continuation's pseudo-arclength corrector
and package fold's refinement run their own bordered Newton iterations and
reuse only this package's error sentinels.
*/
package newton

import (
	"fmt"
	"math"

	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/vecops"
)

// Residual evaluates F(x).
type Residual func(x vecops.Vector) (vecops.Vector, error)

// Jacobian evaluates J(x), returned as a linalg.System bound at x.
type Jacobian func(x vecops.Vector) (linalg.System, error)

// Options configures the Newton iteration (spec.md §3's NewtonOptions).
type Options struct {
	// Tol is the residual-norm threshold for convergence.
	Tol float64

	// MaxIter caps the number of Newton iterations.
	MaxIter int

	// LineSearch enables backtracking (step-halving) damping.
	LineSearch bool

	// MaxHalvings caps the number of backtracking halvings per
	// iteration when LineSearch is enabled. Zero means DefaultMaxHalvings.
	MaxHalvings int

	// Verbose enables printing of per-iteration residual norms via Out,
	// mirroring gosl's NlSolver.Out callback. Nil Out means silent.
	Verbose bool

	// Out, if non-nil and Verbose is set, is called once per iteration with the current
	// iterate and residual norm. It carries no logging dependency; the
	// caller wires it to whatever sink it wants (spec.md's Non-goals
	// exclude file/logging plumbing from this module).
	Out func(iter int, x vecops.Vector, residualNorm float64)
}

// DefaultMaxHalvings is used when Options.MaxHalvings is zero.
const DefaultMaxHalvings = 10

func setDefaults(o Options) Options {
	if o.Tol == 0 {
		o.Tol = 1e-8
	}
	if o.MaxIter == 0 {
		o.MaxIter = 20
	}
	if o.MaxHalvings == 0 {
		o.MaxHalvings = DefaultMaxHalvings
	}
	return o
}

// Result holds the outcome of a Newton solve.
type Result struct {
	// X is the final (or best-effort, if !Converged) iterate.
	X vecops.Vector

	// History holds the residual norm after each iteration, History[0]
	// being the norm at the starting point.
	History []float64

	// Converged reports whether ‖R(X)‖ <= Options.Tol was reached.
	Converged bool
}

// Solve runs Newton's method from x0. If normFn is nil, the Euclidean norm
// (vecops.Vector.Norm) is used.
//
// Per spec.md's testable property 1 (Newton idempotence), if
// ‖R(x0)‖ <= opts.Tol already, Solve returns x0 unchanged with zero
// additional iterations.
func Solve(R Residual, J Jacobian, x0 vecops.Vector, solver linalg.Solver, opts Options, normFn func(vecops.Vector) float64) (Result, error) {
	opts = setDefaults(opts)
	if normFn == nil {
		normFn = vecops.NormOf
	}

	x := x0.Clone()
	r, err := R(x)
	if err != nil {
		return Result{X: x, Converged: false}, fmt.Errorf("newton: residual evaluation: %w", err)
	}
	n := normFn(r)
	if !isFinite(n) {
		return Result{X: x, History: []float64{n}, Converged: false}, ErrNonFinite
	}
	history := []float64{n}
	if opts.Verbose && opts.Out != nil {
		opts.Out(0, x, n)
	}
	if n <= opts.Tol {
		return Result{X: x, History: history, Converged: true}, nil
	}

	for k := 1; k <= opts.MaxIter; k++ {
		sys, err := J(x)
		if err != nil {
			return Result{X: x, History: history, Converged: false}, fmt.Errorf("newton: jacobian evaluation: %w", err)
		}

		solved, err := solver.Solve(sys, r)
		if err != nil || !solved.Converged {
			return Result{X: x, History: history, Converged: false}, fmt.Errorf("%w: %v", ErrLinearSolveFailure, err)
		}
		delta := solved.X

		alpha := 1.0
		nextR := r
		nextN := n
		if opts.LineSearch {
			for h := 0; h < opts.MaxHalvings; h++ {
				trial := x.Clone()
				trial.AddScaled(-alpha, delta)
				trialR, err := R(trial)
				if err != nil {
					return Result{X: x, History: history, Converged: false}, fmt.Errorf("newton: residual evaluation: %w", err)
				}
				trialN := normFn(trialR)
				if trialN < n {
					nextR, nextN = trialR, trialN
					break
				}
				alpha *= 0.5
			}
		}

		x.AddScaled(-alpha, delta)
		if !opts.LineSearch || nextR == r {
			nextR, err = R(x)
			if err != nil {
				return Result{X: x, History: history, Converged: false}, fmt.Errorf("newton: residual evaluation: %w", err)
			}
			nextN = normFn(nextR)
		}
		r, n = nextR, nextN

		if !isFinite(n) {
			return Result{X: x, History: append(history, n), Converged: false}, ErrNonFinite
		}
		history = append(history, n)
		if opts.Verbose && opts.Out != nil {
			opts.Out(k, x, n)
		}
		if n <= opts.Tol {
			return Result{X: x, History: history, Converged: true}, nil
		}
	}

	return Result{X: x, History: history, Converged: false}, ErrMaxIterations
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
