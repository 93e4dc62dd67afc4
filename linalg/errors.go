// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"errors"
	"fmt"
)

// ErrSingular is returned by Direct when the Jacobian's dense factorisation
// is singular (or too ill-conditioned to trust).
var ErrSingular = errors.New("linalg: matrix is singular")

// ErrNotFlattenable is returned by Krylov when the supplied vectors do not
// implement vecops.Flattener, so they cannot be bridged onto
// gonum/linsolve's *mat.VecDense-based Krylov basis storage.
var ErrNotFlattenable = errors.New("linalg: vector does not implement vecops.Flattener")

// ErrNotDense is returned by Direct when the System does not implement
// DenseSystem, i.e. it exposes no concrete matrix to factorise.
var ErrNotDense = errors.New("linalg: system has no dense form")

// ErrIterationLimit is returned (wrapped) by Krylov when the underlying
// gonum/linsolve iteration reaches its maximum without converging. The
// caller (NewtonSolver, Continuation) treats this as LinearSolveFailure
// (spec.md §7): a recoverable step rejection, never a panic.
var ErrIterationLimit = errors.New("linalg: iteration limit reached")

func wrapf(format string, args ...interface{}) error {
	return fmt.Errorf("linalg: "+format, args...)
}
