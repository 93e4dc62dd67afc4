// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"errors"

	"gonum.org/v1/gonum/linsolve"
	"gonum.org/v1/gonum/mat"

	"github.com/arclen/pacl/vecops"
)

// Krylov solves J·x = b (and the shifted form) by an iterative Krylov
// method from gonum.org/v1/gonum/linsolve, treating J as an action-only
// operator (spec.md §4.2: "J is treated as a linear operator
// (action-only)").
//
// The System and right-hand side need only implement vecops.Vector /
// vecops.Flattener; Krylov bridges them onto gonum/linsolve's
// *mat.VecDense-based Krylov basis storage by flattening and unflattening
// around every matrix-vector product. This is what lets GMRES run against a
// SeriesVector or BlockVector exactly as it would against a DenseVector.
type Krylov struct {
	// NewMethod constructs the linsolve.Method to use; if nil, a fresh
	// *linsolve.GMRES{} is used, matching gonum/linsolve's own default
	// (see linsolve.Iterative).
	NewMethod func() linsolve.Method

	// Settings configures tolerance, iteration budget, restart and
	// preconditioning. The Dst, InitX and Work fields are ignored; Krylov
	// manages its own buffers per call.
	Settings linsolve.Settings
}

// Solve implements Solver.
func (k Krylov) Solve(sys System, b vecops.Vector) (Result, error) {
	return k.solve(sys, b, 0)
}

// SolveShifted implements Solver. sigma == 0 takes the same fast path as
// Solve, per spec.md §4.2.
func (k Krylov) SolveShifted(sys System, b vecops.Vector, sigma float64) (Result, error) {
	return k.solve(sys, b, sigma)
}

func (k Krylov) solve(sys System, b vecops.Vector, sigma float64) (Result, error) {
	fb, ok := b.(vecops.Flattener)
	if !ok {
		return Result{}, ErrNotFlattenable
	}
	n := sys.Dim()

	bFlat := mat.NewVecDense(n, make([]float64, n))
	fb.Flatten(bFlat.RawVector().Data)

	var op System = sys
	if sigma != 0 {
		op = shiftedSystem{inner: sys, sigma: sigma}
	}

	adapter := &operatorAdapter{
		sys: op,
		src: b.Clone(),
		dst: b.Clone(),
		buf: make([]float64, n),
	}

	settings := k.Settings
	settings.Dst = nil
	settings.InitX = nil
	settings.Work = nil

	var method linsolve.Method
	if k.NewMethod != nil {
		method = k.NewMethod()
	}

	res, err := linsolve.Iterative(adapter, bFlat, method, &settings)

	x := b.Clone()
	fx, ok := x.(vecops.Flattener)
	if !ok {
		return Result{}, ErrNotFlattenable
	}
	if res != nil {
		fx.Unflatten(res.X.RawVector().Data)
	}

	converged := err == nil
	iterations := 0
	if res != nil {
		iterations = res.Stats.Iterations
	}
	if errors.Is(err, linsolve.ErrIterationLimit) {
		err = wrapf("krylov solve: %w: %v", ErrIterationLimit, err)
	} else if err != nil {
		err = wrapf("krylov solve: %w", err)
	}
	return Result{X: x, Converged: converged, Iterations: iterations}, err
}

// operatorAdapter implements linsolve.MulVecToer by flattening/unflattening
// around a System.MulVec call, so that an abstract vecops.Vector operator
// can drive gonum/linsolve's reverse-communication Krylov methods.
type operatorAdapter struct {
	sys      System
	src, dst vecops.Vector
	buf      []float64
}

func (a *operatorAdapter) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	if trans {
		panic("linalg: Krylov operator does not support transposed multiplication")
	}
	n := x.Len()
	for i := 0; i < n; i++ {
		a.buf[i] = x.AtVec(i)
	}
	fsrc := a.src.(vecops.Flattener)
	fsrc.Unflatten(a.buf)
	a.sys.MulVec(a.dst, a.src)
	fdst := a.dst.(vecops.Flattener)
	fdst.Flatten(a.buf)
	for i := 0; i < n; i++ {
		dst.SetVec(i, a.buf[i])
	}
}
