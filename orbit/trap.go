// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package orbit implements PeriodicOrbitTrap (spec.md §4.7): the trapezoidal
collocation discretisation of a periodic orbit of ẋ = F(x), plugged into
package newton (and, through it, package continuation) as an alternative
residual/Jacobian pair over the flat state

	u = (U[:,1], U[:,2], ..., U[:,M], T)

of length M·N+1, where N is the phase-space dimension, M the number of time
slices, and T the unknown period.
*/
package orbit

import (
	"fmt"

	"github.com/arclen/pacl/fdiff"
	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/sparse"
	"github.com/arclen/pacl/vecops"
)

// Field evaluates the vector field F(x) driving ẋ = F(x), for x in the
// N-dimensional phase space (not the M·N+1-dimensional collocation state).
type Field func(x vecops.Vector) (vecops.Vector, error)

// FieldJacobian evaluates ∂F/∂x at x, as a dense N×N operator — dense because
// both the matrix-free action and the sparse block assembly need to act on
// (and, for the sparse form, read off the entries of) this small per-slice
// block.
type FieldJacobian func(x vecops.Vector) (linalg.DenseSystem, error)

// Trap bundles the vector field, its Jacobian, and the phase condition's
// fixed vectors into a PeriodicOrbitTrap (spec.md §4.7).
type Trap struct {
	F Field
	J FieldJacobian

	// Phi and XPi are the fixed phase-condition vectors: the residual's last
	// scalar is ⟨U[:,1] - XPi, Phi⟩.
	Phi, XPi vecops.Vector

	// M is the number of time slices; N is inferred from Phi's length.
	M int
	N int

	// Solver is used by JacobianAction's caller (via package newton) for
	// the matrix-free path, and is otherwise unused by Trap itself; it is
	// accepted at construction to match spec.md §6's
	// "PeriodicOrbitTrap(F, J, ϕ, x_π, M, linearSolver)" constructor shape.
	Solver linalg.Solver

	// FDStep is the finite-difference step for the ∂/∂T column and row.
	// Zero means fdiff.DefaultStep (spec.md §4.7, §9).
	FDStep float64
}

// New constructs a Trap. phi and xPi must have the same length N.
func New(f Field, j FieldJacobian, phi, xPi vecops.Vector, m int, solver linalg.Solver) *Trap {
	return &Trap{F: f, J: j, Phi: phi, XPi: xPi, M: m, N: phi.Len(), Solver: solver}
}

func (t *Trap) fdStep() float64 {
	if t.FDStep == 0 {
		return fdiff.DefaultStep
	}
	return t.FDStep
}

// Dim returns the length of the collocation state, M·N + 1.
func (t *Trap) Dim() int { return t.M*t.N + 1 }

func (t *Trap) slice(u vecops.Vector, i int) vecops.Vector {
	v := vecops.NewDenseVector(t.N, nil)
	base := i * t.N
	for k := 0; k < t.N; k++ {
		v.Set(k, u.At(base+k))
	}
	return v
}

func (t *Trap) setSlice(dst vecops.Vector, i int, v vecops.Vector) {
	base := i * t.N
	for k := 0; k < t.N; k++ {
		dst.Set(base+k, v.At(k))
	}
}

func period(u vecops.Vector) float64 { return u.At(u.Len() - 1) }

// Residual evaluates the collocation residual of spec.md §4.7: the M-1
// trapezoidal recurrence blocks, the periodicity block, and the phase
// condition's trailing scalar.
func (t *Trap) Residual(u vecops.Vector) (vecops.Vector, error) {
	if u.Len() != t.Dim() {
		return nil, fmt.Errorf("orbit: state length %d, want %d", u.Len(), t.Dim())
	}
	T := period(u)
	h := T / float64(t.M)

	r := vecops.NewDenseVector(t.Dim(), nil)

	u1 := t.slice(u, 0)
	uM := t.slice(u, t.M-1)
	periodicity := uM.Clone()
	periodicity.AddScaled(-1, u1)
	t.setSlice(r, 0, periodicity)

	prev := u1
	fPrev, err := t.F(prev)
	if err != nil {
		return nil, fmt.Errorf("orbit: field evaluation: %w", err)
	}
	for i := 1; i < t.M; i++ {
		cur := t.slice(u, i)
		fCur, err := t.F(cur)
		if err != nil {
			return nil, fmt.Errorf("orbit: field evaluation: %w", err)
		}
		block := cur.Clone()
		block.AddScaled(-1, prev)
		sum := fCur.Clone()
		sum.AddScaled(1, fPrev)
		block.AddScaled(-h/2, sum)
		t.setSlice(r, i, block)
		prev, fPrev = cur, fCur
	}

	phase := u1.Clone()
	phase.AddScaled(-1, t.XPi)
	r.Set(t.Dim()-1, t.Phi.Dot(phase))

	return r, nil
}

// trapSystem is the matrix-free linalg.System for the Jacobian action on
// (δu, δT), bound at the state u passed to JacobianAction.
type trapSystem struct {
	t *Trap
	u vecops.Vector
	r vecops.Vector // Residual(u), cached for the ∂/∂T finite difference
}

func (s trapSystem) Dim() int { return s.t.Dim() }

// MulVec computes dst = (∂Residual/∂u)(u) · du, the matrix-free Jacobian
// action of spec.md §4.7: the same block recurrence with J(U[:,i])·δU[:,i]
// in place of F-evaluations, plus a finite-difference column for ∂/∂T.
func (s trapSystem) MulVec(dst, du vecops.Vector) {
	t := s.t
	T := period(s.u)
	h := T / float64(t.M)
	dT := du.At(du.Len() - 1)

	du1 := t.slice(du, 0)
	duM := t.slice(du, t.M-1)
	periodicity := duM.Clone()
	periodicity.AddScaled(-1, du1)
	t.setSlice(dst, 0, periodicity)

	uPrev := t.slice(s.u, 0)
	duPrev := du1
	jPrev, err := t.J(uPrev)
	if err != nil {
		panic(fmt.Sprintf("orbit: jacobian evaluation: %v", err))
	}
	jduPrev := vecops.NewDenseVector(t.N, nil)
	jPrev.MulVec(jduPrev, duPrev)

	rAtU := s.r

	var dResidualDT vecops.Vector
	if dT != 0 {
		var err error
		dResidualDT, err = fdiff.Vector(func(tTrial float64) (vecops.Vector, error) {
			uShift := s.u.Clone()
			uShift.Set(uShift.Len()-1, tTrial)
			return t.Residual(uShift)
		}, T, rAtU, t.fdStep())
		if err != nil {
			panic(fmt.Sprintf("orbit: residual evaluation: %v", err))
		}
	}

	for i := 1; i < t.M; i++ {
		uCur := t.slice(s.u, i)
		duCur := t.slice(du, i)
		jCur, err := t.J(uCur)
		if err != nil {
			panic(fmt.Sprintf("orbit: jacobian evaluation: %v", err))
		}
		jduCur := vecops.NewDenseVector(t.N, nil)
		jCur.MulVec(jduCur, duCur)

		block := duCur.Clone()
		block.AddScaled(-1, duPrev)
		sum := jduCur.Clone()
		sum.AddScaled(1, jduPrev)
		block.AddScaled(-h/2, sum)

		if dT != 0 {
			block.AddScaled(dT, t.slice(dResidualDT, i))
		}

		t.setSlice(dst, i, block)
		uPrev, duPrev, jduPrev = uCur, duCur, jduCur
	}

	phase := du1.Clone()
	last := t.Phi.Dot(phase)
	if dT != 0 {
		last += dT * dResidualDT.At(dResidualDT.Len()-1)
	}
	dst.Set(dst.Len()-1, last)
}

// JacobianAction returns the matrix-free Jacobian action of spec.md §4.7,
// bound at state u.
func (t *Trap) JacobianAction(u vecops.Vector) (linalg.System, error) {
	r, err := t.Residual(u)
	if err != nil {
		return nil, err
	}
	return trapSystem{t: t, u: u.Clone(), r: r}, nil
}

// SparseJacobian assembles the block-tridiagonal-plus-corner Jacobian of
// spec.md §4.7 as a sparse.Triplet. gamma scales the (1,1) corner block
// (default 1; a caller doing a shifted solve may pass another value).
func (t *Trap) SparseJacobian(u vecops.Vector, gamma float64) (*sparse.Triplet, error) {
	n, m := t.N, t.M
	dim := t.Dim()
	tr := sparse.NewTriplet(dim, dim)
	tr.Start()

	T := period(u)
	h := T / float64(m)

	r, err := t.Residual(u)
	if err != nil {
		return nil, err
	}
	dResidualDT, err := fdiff.Vector(func(tTrial float64) (vecops.Vector, error) {
		uShift := u.Clone()
		uShift.Set(uShift.Len()-1, tTrial)
		return t.Residual(uShift)
	}, T, r, t.fdStep())
	if err != nil {
		return nil, fmt.Errorf("orbit: residual evaluation: %w", err)
	}

	// Block (1,1) = -gamma*I, block (1,M) = I (periodicity row, 0-indexed
	// block row 0).
	for k := 0; k < n; k++ {
		tr.Put(k, k, -gamma)
		tr.Put(k, (m-1)*n+k, 1)
	}

	uPrev := t.slice(u, 0)
	jPrev, err := t.J(uPrev)
	if err != nil {
		return nil, fmt.Errorf("orbit: jacobian evaluation: %w", err)
	}
	jPrevDense := jPrev.Dense()

	for i := 1; i < m; i++ {
		uCur := t.slice(u, i)
		jCur, err := t.J(uCur)
		if err != nil {
			return nil, fmt.Errorf("orbit: jacobian evaluation: %w", err)
		}
		jCurDense := jCur.Dense()

		rowBase := i * n
		colCur := i * n
		colPrev := (i - 1) * n
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				diag := 0.0
				if a == b {
					diag = 1
				}
				tr.Put(rowBase+a, colCur+b, diag-h/2*jCurDense.At(a, b))
				offDiag := 0.0
				if a == b {
					offDiag = -1
				}
				tr.Put(rowBase+a, colPrev+b, offDiag-h/2*jPrevDense.At(a, b))
			}
		}

		// ∂block_i/∂T.
		for a := 0; a < n; a++ {
			tr.Put(rowBase+a, dim-1, dResidualDT.At(rowBase+a))
		}

		uPrev, jPrevDense = uCur, jCurDense
	}

	// Last row: phi in the first N entries.
	for k := 0; k < n; k++ {
		tr.Put(dim-1, k, t.Phi.At(k))
	}
	// Last column, last row: ∂phase/∂T (by construction the phase condition
	// does not depend on T, but computed by finite difference for
	// consistency with the rest of the assembly and in case a caller
	// overrides Residual's phase block in the future).
	tr.Put(dim-1, dim-1, dResidualDT.At(dim-1))

	return tr, nil
}

// PeriodicityNorm reports ‖U[:,M] - U[:,1]‖ (spec.md §8 testable property 6).
func (t *Trap) PeriodicityNorm(u vecops.Vector) float64 {
	u1 := t.slice(u, 0)
	uM := t.slice(u, t.M-1)
	d := uM.Clone()
	d.AddScaled(-1, u1)
	return d.Norm()
}
