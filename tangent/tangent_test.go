// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tangent

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/vecops"
)

type identitySystem struct{ n int }

func (s identitySystem) Dim() int { return s.n }
func (s identitySystem) MulVec(dst, x vecops.Vector) {
	for i := 0; i < s.n; i++ {
		dst.Set(i, x.At(i))
	}
}
func (s identitySystem) Dense() *mat.Dense {
	d := mat.NewDense(s.n, s.n, nil)
	for i := 0; i < s.n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

func floatsEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSecantNormalized(t *testing.T) {
	xPrev := vecops.NewDenseVector(2, []float64{0, 0})
	xCur := vecops.NewDenseVector(2, []float64{1, 0})
	tn, err := Secant(xPrev, xCur, 0, 1, 1, 0.5)
	if err != nil {
		t.Fatalf("Secant() error = %v", err)
	}
	if norm := weightedNorm(tn.Dx, tn.Dp, 0.5, 2); !floatsEqual(norm, 1, 1e-10) {
		t.Errorf("weightedNorm = %v, want 1", norm)
	}
	if tn.Dp <= 0 {
		t.Errorf("Dp = %v, want positive (direction preserved)", tn.Dp)
	}
}

func TestSecantZeroStepLength(t *testing.T) {
	xPrev := vecops.NewDenseVector(2, []float64{0, 0})
	xCur := vecops.NewDenseVector(2, []float64{1, 0})
	if _, err := Secant(xPrev, xCur, 0, 1, 0, 0.5); err == nil {
		t.Fatal("Secant() with dsPrev=0 should return an error")
	}
}

func TestBorderedMatchesHandSolvedSystem(t *testing.T) {
	sys := identitySystem{n: 2}
	fp := vecops.NewDenseVector(2, []float64{1, 1})
	tPrev := Tangent{Dx: vecops.NewDenseVector(2, []float64{1, 0}), Dp: 0}

	tn, err := Bordered(linalg.Direct{}, sys, fp, tPrev, 0.5)
	if err != nil {
		t.Fatalf("Bordered() error = %v", err)
	}
	want := []float64{1, 1}
	for i, w := range want {
		if got := tn.Dx.At(i); !floatsEqual(got, w, 1e-8) {
			t.Errorf("Dx[%d] = %v, want %v", i, got, w)
		}
	}
	if !floatsEqual(tn.Dp, -1, 1e-8) {
		t.Errorf("Dp = %v, want -1", tn.Dp)
	}
}

func TestOrientationKeepsAlignedTangent(t *testing.T) {
	tPrev := Tangent{Dx: vecops.NewDenseVector(2, []float64{1, 0}), Dp: 0}
	tNew := Tangent{Dx: vecops.NewDenseVector(2, []float64{1, 1}), Dp: -1}

	got := Orientation(tNew, tPrev, 0.5)
	if !floatsEqual(got.Dp, -1, 1e-12) || !floatsEqual(got.Dx.At(0), 1, 1e-12) {
		t.Errorf("Orientation() flipped an already-aligned tangent: %+v", got)
	}
}

func TestOrientationFlipsReversedTangent(t *testing.T) {
	tPrev := Tangent{Dx: vecops.NewDenseVector(2, []float64{1, 0}), Dp: 0}
	tNew := Tangent{Dx: vecops.NewDenseVector(2, []float64{-1, -1}), Dp: 1}

	got := Orientation(tNew, tPrev, 0.5)
	if !floatsEqual(got.Dp, -1, 1e-12) {
		t.Errorf("Dp = %v, want -1 (flipped)", got.Dp)
	}
	if !floatsEqual(got.Dx.At(0), 1, 1e-12) || !floatsEqual(got.Dx.At(1), 1, 1e-12) {
		t.Errorf("Dx = (%v, %v), want (1, 1) (flipped)", got.Dx.At(0), got.Dx.At(1))
	}
}
