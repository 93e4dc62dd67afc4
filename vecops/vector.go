// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package vecops specifies the capability set that a concrete vector type must
satisfy to be used by the continuation core.

The core never inspects the internals of a Vector — it only calls the methods
declared here. This is what lets the same Newton solver, tangent predictor
and continuation loop drive a dense numeric vector, a coefficient vector of a
function expansion, or a block-structured PDE state without change.

Three implementations are provided: DenseVector, backed by
gonum.org/v1/gonum/mat.VecDense; SeriesVector, a plain []float64 operated on
through gonum.org/v1/gonum/floats; and BlockVector, a fixed collection of
Vector slots that is itself a Vector.
*/
package vecops

// Vector is the abstract element of the state space x lives in.
//
// Every method that mutates state does so on the receiver; Combine and
// AddScaled follow the BLAS/gonum convention of writing into the receiver
// rather than allocating.
type Vector interface {
	// Len returns the dimension of the vector.
	Len() int

	// At returns the i-th component.
	At(i int) float64

	// Set sets the i-th component.
	Set(i int, v float64)

	// Dot returns the inner product ⟨v, x⟩.
	Dot(x Vector) float64

	// Norm returns the 2-norm ‖v‖₂.
	Norm() float64

	// NormInf returns the ∞-norm ‖v‖∞.
	NormInf() float64

	// AddScaled performs the scaled add v ← α·x + v.
	AddScaled(alpha float64, x Vector)

	// Combine performs the scaled combine v ← α·x + β·v.
	Combine(alpha float64, x Vector, beta float64)

	// Scale performs the scalar multiply v ← β·v.
	Scale(beta float64)

	// Clone returns a deep copy of v.
	Clone() Vector
}

// Flattener is implemented by Vector types that can be copied into and out
// of a flat []float64 buffer. The Krylov linear solver uses this to bridge
// an arbitrary Vector representation onto gonum/linsolve, which requires a
// concrete *mat.VecDense for its Krylov basis storage.
type Flattener interface {
	Vector

	// Flatten copies the vector's components into dst, which must have
	// length Len().
	Flatten(dst []float64)

	// Unflatten overwrites the vector's components from src, which must
	// have length Len().
	Unflatten(src []float64)
}

// NormOf returns the 2-norm of x, the default norm used throughout the
// package when a caller does not supply its own normFn.
func NormOf(x Vector) float64 { return x.Norm() }
