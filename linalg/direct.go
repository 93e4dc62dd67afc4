// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/arclen/pacl/vecops"
)

// Direct solves J·x = b by dense LU factorisation. sys must implement
// DenseSystem; ErrNotDense is returned otherwise.
type Direct struct{}

// Solve implements Solver.
func (Direct) Solve(sys System, b vecops.Vector) (Result, error) {
	return solveDense(sys, b, 0)
}

// SolveShifted implements Solver. sigma == 0 takes the same fast path as
// Solve, per spec.md §4.2.
func (Direct) SolveShifted(sys System, b vecops.Vector, sigma float64) (Result, error) {
	return solveDense(sys, b, sigma)
}

func solveDense(sys System, b vecops.Vector, sigma float64) (Result, error) {
	ds, ok := sys.(DenseSystem)
	if !ok {
		return Result{}, ErrNotDense
	}
	n := sys.Dim()
	a := ds.Dense()
	if sigma != 0 {
		shifted := mat.NewDense(n, n, nil)
		shifted.Copy(a)
		for i := 0; i < n; i++ {
			shifted.Set(i, i, shifted.At(i, i)+sigma)
		}
		a = shifted
	}

	bRaw := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		bRaw.SetVec(i, b.At(i))
	}

	var lu mat.LU
	lu.Factorize(a)

	var xRaw mat.VecDense
	xRaw.ReuseAsVec(n)
	if err := lu.SolveVecTo(&xRaw, false, bRaw); err != nil {
		return Result{X: vecops.WrapDense(&xRaw), Converged: false, Iterations: 1}, wrapf("direct solve: %w: %v", ErrSingular, err)
	}

	return Result{X: vecops.WrapDense(&xRaw), Converged: true, Iterations: 1}, nil
}
