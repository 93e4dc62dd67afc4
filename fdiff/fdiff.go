// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package fdiff provides the one-sided finite-difference derivatives used
across the continuation core: ∂F/∂p for the tangent and corrector Jacobians
(spec.md §4.4, §4.5), ∂residual/∂T for the periodic-orbit Jacobian
(spec.md §4.7), and the ⟨b, w⟩-row derivative of the fold problem
(spec.md §4.6) when no analytic second-derivative operator is supplied.

gonum.org/v1/gonum/diff/fd was evaluated for this role; its Derivative and
Gradient functions differentiate a scalar-valued func(float64) float64 or
func([]float64) float64 objective, which cannot express a vector-valued
residual's derivative with respect to a single scalar parameter. Rather than
force that mismatched fit, this package supplies the three-line one-sided
formula directly (see DESIGN.md for the full justification).
*/
package fdiff

import "github.com/arclen/pacl/vecops"

// DefaultStep is the finite-difference step used throughout the module
// unless a caller overrides it (spec.md §9: "document as a configurable
// constant").
const DefaultStep = 1e-9

// Vector approximates ∂F/∂p at (x, p) by the one-sided difference
//
//	(F(x, p+δ) - F(x, p)) / δ
//
// fAtP is F(x, p), already evaluated by the caller to avoid a redundant
// evaluation. The result is written into a freshly allocated vector cloned
// from F(x, p+δ).
func Vector(f func(p float64) (vecops.Vector, error), p float64, fAtP vecops.Vector, step float64) (vecops.Vector, error) {
	if step == 0 {
		step = DefaultStep
	}
	fPlus, err := f(p + step)
	if err != nil {
		return nil, err
	}
	d := fPlus.Clone()
	d.Combine(-1/step, fAtP, 1/step)
	return d, nil
}

// Scalar approximates a scalar derivative d/dt of g at t by the one-sided
// difference (g(t+δ) - g(t)) / δ, given the already-evaluated gAtT.
func Scalar(g func(t float64) (float64, error), t, gAtT, step float64) (float64, error) {
	if step == 0 {
		step = DefaultStep
	}
	gPlus, err := g(t + step)
	if err != nil {
		return 0, err
	}
	return (gPlus - gAtT) / step, nil
}
