// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"math"
	"testing"
)

func TestTripletDenseAndMulVecAgree(t *testing.T) {
	tr := NewTriplet(3, 3)
	tr.Start()
	tr.Put(0, 0, 2)
	tr.Put(0, 1, -1)
	tr.Put(1, 0, -1)
	tr.Put(1, 1, 2)
	tr.Put(1, 2, -1)
	tr.Put(2, 1, -1)
	tr.Put(2, 2, 2)

	dense := tr.ToDense()
	x := []float64{1, 2, 3}

	want := make([]float64, 3)
	for i := 0; i < 3; i++ {
		sum := 0.0
		for j := 0; j < 3; j++ {
			sum += dense.At(i, j) * x[j]
		}
		want[i] = sum
	}

	got := make([]float64, 3)
	tr.MulVec(got, x, false)

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("MulVec()[%d] = %v, want %v (dense agreement)", i, got[i], want[i])
		}
	}
}

func TestTripletStartClears(t *testing.T) {
	tr := NewTriplet(2, 2)
	tr.Put(0, 0, 5)
	tr.Start()
	if len(tr.data) != 0 {
		t.Fatalf("Start() did not clear entries, len = %d", len(tr.data))
	}
}

func TestTripletDuplicatesAccumulate(t *testing.T) {
	tr := NewTriplet(1, 1)
	tr.Put(0, 0, 2)
	tr.Put(0, 0, 3)
	if got, want := tr.ToDense().At(0, 0), 5.0; got != want {
		t.Errorf("ToDense().At(0,0) = %v, want %v", got, want)
	}
}
