// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import "errors"

// ErrMaxIterations is returned when the iteration count exceeds
// Options.MaxIter without the residual norm reaching Options.Tol
// (spec.md §7: NonConvergence).
var ErrMaxIterations = errors.New("newton: maximum iterations exceeded")

// ErrLinearSolveFailure wraps a failure of the inner LinearSolver
// (spec.md §7: LinearSolveFailure).
var ErrLinearSolveFailure = errors.New("newton: linear solve failed")

// ErrNonFinite is returned when the residual norm becomes NaN or Inf
// (spec.md §7: NonFinite — fails fast, never treated as a step rejection).
var ErrNonFinite = errors.New("newton: residual is not finite")
