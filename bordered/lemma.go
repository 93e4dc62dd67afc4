// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bordered implements the bordering lemma for the (N+1)×(N+1) bordered
linear system

	[ J   Fp ] [dx]   [f]
	[ cᵀ  d  ] [dp] = [g]

where c = (θ/N)·rowVec and d = (1-θ)·rowScalar, by solving two N×N systems
against the inner LinearSolver rather than assembling the augmented matrix
(spec.md §9: "this preserves the user's preconditioner structure on J").

Both package tangent (the bordered tangent predictor, spec.md §4.4) and
package continuation (the pseudo-arclength corrector, spec.md §4.5 step 2)
solve a system of exactly this shape, so the lemma lives in one place.
*/
package bordered

import (
	"errors"
	"fmt"

	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/vecops"
)

// ErrBreakdown is returned when the bordering lemma's scalar divisor
// (1-θ)·rowScalar - (θ/N)·⟨rowVec, v⟩ vanishes, meaning the bordered system
// is singular in the arclength row.
var ErrBreakdown = errors.New("bordered: bordering lemma breakdown (zero divisor)")

// Solve applies the bordering lemma. f and fp are the top-block right-hand
// side and the parameter-derivative column (∂F/∂p); rowVec and rowScalar are
// the bottom row's coefficients; g is the bottom-block right-hand side; n is
// the dimension used in the θ/N scaling (spec.md's arclength normalisation).
func Solve(solver linalg.Solver, sys linalg.System, f, fp vecops.Vector, rowVec vecops.Vector, rowScalar, g, theta float64, n int) (dx vecops.Vector, dp float64, err error) {
	ru, err := solver.Solve(sys, f)
	if err != nil {
		return nil, 0, fmt.Errorf("bordered: solving J*u = f: %w", err)
	}
	if !ru.Converged {
		return nil, 0, fmt.Errorf("bordered: solving J*u = f did not converge")
	}

	rv, err := solver.Solve(sys, fp)
	if err != nil {
		return nil, 0, fmt.Errorf("bordered: solving J*v = Fp: %w", err)
	}
	if !rv.Converged {
		return nil, 0, fmt.Errorf("bordered: solving J*v = Fp did not converge")
	}

	weight := theta / float64(n)
	cDotU := weight * rowVec.Dot(ru.X)
	cDotV := weight * rowVec.Dot(rv.X)
	d := (1 - theta) * rowScalar

	denom := d - cDotV
	if denom == 0 {
		return nil, 0, ErrBreakdown
	}

	dp = (g - cDotU) / denom
	dx = ru.X.Clone()
	dx.Combine(-dp, rv.X, 1)
	return dx, dp, nil
}
