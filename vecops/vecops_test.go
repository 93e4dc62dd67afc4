// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecops

import (
	"math"
	"testing"
)

func floatsEqual(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestDenseVectorOps(t *testing.T) {
	a := NewDenseVector(3, []float64{1, 2, 3})
	b := NewDenseVector(3, []float64{4, 5, 6})

	if got, want := a.Dot(b), 32.0; !floatsEqual(got, want, 1e-12) {
		t.Errorf("Dot() = %v, want %v", got, want)
	}
	if got, want := a.Norm(), math.Sqrt(14); !floatsEqual(got, want, 1e-12) {
		t.Errorf("Norm() = %v, want %v", got, want)
	}
	if got, want := a.NormInf(), 3.0; !floatsEqual(got, want, 1e-12) {
		t.Errorf("NormInf() = %v, want %v", got, want)
	}

	c := a.Clone()
	c.AddScaled(2, b)
	want := []float64{9, 12, 15}
	for i, w := range want {
		if !floatsEqual(c.At(i), w, 1e-12) {
			t.Errorf("AddScaled()[%d] = %v, want %v", i, c.At(i), w)
		}
	}

	d := a.Clone()
	d.Combine(1, b, 2)
	want = []float64{6, 9, 12}
	for i, w := range want {
		if !floatsEqual(d.At(i), w, 1e-12) {
			t.Errorf("Combine()[%d] = %v, want %v", i, d.At(i), w)
		}
	}

	e := a.Clone()
	e.Scale(2)
	for i := 0; i < 3; i++ {
		if !floatsEqual(e.At(i), 2*a.At(i), 1e-12) {
			t.Errorf("Scale()[%d] = %v, want %v", i, e.At(i), 2*a.At(i))
		}
	}

	// Clone must be independent of the original.
	c.Set(0, 1000)
	if a.At(0) == 1000 {
		t.Error("Clone() aliases the original vector")
	}
}

func TestSeriesVectorMatchesDense(t *testing.T) {
	sv := &SeriesVector{Data: []float64{1, 2, 3}}
	sw := &SeriesVector{Data: []float64{4, 5, 6}}
	dv := NewDenseVector(3, []float64{1, 2, 3})
	dw := NewDenseVector(3, []float64{4, 5, 6})

	if !floatsEqual(sv.Dot(sw), dv.Dot(dw), 1e-12) {
		t.Errorf("SeriesVector.Dot disagrees with DenseVector.Dot")
	}
	if !floatsEqual(sv.Norm(), dv.Norm(), 1e-12) {
		t.Errorf("SeriesVector.Norm disagrees with DenseVector.Norm")
	}
}

func TestBlockVectorOps(t *testing.T) {
	b := NewBlockVector(
		NewDenseVector(2, []float64{1, 2}),
		NewDenseVector(1, []float64{3}),
	)
	if got, want := b.Len(), 3; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got, want := b.At(2), 3.0; !floatsEqual(got, want, 1e-12) {
		t.Errorf("At(2) = %v, want %v", got, want)
	}

	other := NewBlockVector(
		NewDenseVector(2, []float64{1, 1}),
		NewDenseVector(1, []float64{1}),
	)
	if got, want := b.Dot(other), 1.0+2.0+3.0; !floatsEqual(got, want, 1e-12) {
		t.Errorf("Dot() = %v, want %v", got, want)
	}

	clone := b.Clone().(*BlockVector)
	clone.Set(0, 99)
	if b.At(0) == 99 {
		t.Error("BlockVector.Clone() aliases the original")
	}

	want := math.Sqrt(1 + 4 + 9)
	if got := b.Norm(); !floatsEqual(got, want, 1e-12) {
		t.Errorf("Norm() = %v, want %v", got, want)
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	d := NewDenseVector(3, []float64{1, 2, 3})
	buf := make([]float64, 3)
	d.Flatten(buf)
	buf[0] = 42
	d.Unflatten(buf)
	if !floatsEqual(d.At(0), 42, 1e-12) {
		t.Errorf("Unflatten did not round-trip: At(0) = %v", d.At(0))
	}
}
