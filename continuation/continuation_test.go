// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"

	"github.com/arclen/pacl/linalg"
	"github.com/arclen/pacl/newton"
	"github.com/arclen/pacl/tangent"
	"github.com/arclen/pacl/vecops"
)

// vectorComparer lets cmp.Diff/cmp.Equal compare vecops.Vector fields
// element-wise within a numerical tolerance, since the concrete
// implementations (e.g. *vecops.DenseVector) wrap unexported gonum state
// that cmp cannot traverse directly.
var vectorComparer = cmp.Comparer(func(a, b vecops.Vector) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if math.Abs(a.At(i)-b.At(i)) > 1e-9 {
			return false
		}
	}
	return true
})

// scalarJacobian implements linalg.DenseSystem for F(x, p) = x^2 - p, whose
// branch is the parabola p = x^2 with a fold at the origin (spec.md §8's
// scalar quadratic scenario).
type scalarJacobian struct{ x0 float64 }

func (j scalarJacobian) Dim() int { return 1 }

func (j scalarJacobian) Dense() *mat.Dense {
	return mat.NewDense(1, 1, []float64{2 * j.x0})
}

func (j scalarJacobian) MulVec(dst, x vecops.Vector) {
	dst.Set(0, 2*j.x0*x.At(0))
}

func scalarResidual(x vecops.Vector, p float64) (vecops.Vector, error) {
	v := x.At(0)
	return vecops.NewDenseVector(1, []float64{v*v - p}), nil
}

func scalarJac(x vecops.Vector, p float64) (linalg.System, error) {
	return scalarJacobian{x0: x.At(0)}, nil
}

func floatsEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func scalarNewtonOpts() newton.Options {
	return newton.Options{Tol: 1e-10, MaxIter: 30}
}

func TestRunScalarQuadraticTraversesFold(t *testing.T) {
	x0 := vecops.NewDenseVector(1, []float64{1})

	var tangents []tangent.Tangent
	opts := Options{
		Ds0:              -0.05,
		DsMin:            0.001,
		DsMax:            0.1,
		GrowthFactor:     0.5,
		ShrinkFactor:     0.25,
		Theta:            0.5,
		PMin:             -1,
		PMax:             4,
		MaxSteps:         500,
		DesiredIter:      8,
		DetectFold:       true,
		TangentAlgorithm: TangentBordered,
		Solver:           linalg.Direct{},
		Newton:           scalarNewtonOpts(),
		Finalise: func(x vecops.Vector, tg tangent.Tangent, step int, branch *Branch) bool {
			tangents = append(tangents, tg)
			return true
		},
	}

	branch, _, err := Run(scalarResidual, scalarJac, x0, 1, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(branch.Markers) == 0 {
		t.Fatal("Run() detected no fold marker, want at least one")
	}
	foundNearZero := false
	for _, m := range branch.Markers {
		if m.Kind == MarkerFold && math.Abs(m.BracketedParameter) < 0.1 {
			foundNearZero = true
		}
	}
	if !foundNearZero {
		t.Errorf("no fold marker near p=0 among %v", branch.Markers)
	}

	crossedNegative := false
	for _, pt := range branch.Points {
		if pt.X.At(0) < 0 {
			crossedNegative = true
			break
		}
	}
	if !crossedNegative {
		t.Error("branch never reached the x<0 side of the fold")
	}

	// Testable property 2: tangent normalisation.
	for _, tg := range tangents {
		norm := tg.Dx.Dot(tg.Dx)*opts.Theta/1 + (1-opts.Theta)*tg.Dp*tg.Dp
		if !floatsEqual(norm, 1, 1e-6) {
			t.Errorf("tangent normalisation = %v, want ~1", norm)
		}
	}
}

func TestRunInitialNewtonFailureOnSingularJacobian(t *testing.T) {
	x0 := vecops.NewDenseVector(1, []float64{0})
	opts := Options{
		Ds0:              0.05,
		DsMin:            0.001,
		DsMax:            0.1,
		GrowthFactor:     0.5,
		Theta:            0.5,
		PMin:             -10,
		PMax:             10,
		MaxSteps:         10,
		Solver:           linalg.Direct{},
		Newton:           scalarNewtonOpts(),
		TangentAlgorithm: TangentBordered,
	}

	_, _, err := Run(scalarResidual, scalarJac, x0, 5, opts)
	if !errors.Is(err, ErrInitialNewtonFailed) {
		t.Fatalf("Run() error = %v, want ErrInitialNewtonFailed", err)
	}
}

func TestRunDomainExitTerminatesCleanly(t *testing.T) {
	x0 := vecops.NewDenseVector(1, []float64{1})
	opts := Options{
		Ds0:              0.05,
		DsMin:            0.001,
		DsMax:            0.1,
		GrowthFactor:     0.5,
		ShrinkFactor:     0.25,
		Theta:            0.5,
		PMin:             -1,
		PMax:             4,
		MaxSteps:         500,
		DesiredIter:      8,
		TangentAlgorithm: TangentBordered,
		Solver:           linalg.Direct{},
		Newton:           scalarNewtonOpts(),
	}

	branch, _, err := Run(scalarResidual, scalarJac, x0, 1, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	last := branch.Last()
	if last.P < opts.PMax-1e-6 {
		t.Errorf("last point P = %v, want to have reached PMax = %v", last.P, opts.PMax)
	}
}

// TestRunBranchIsStructurallyDeterministic checks, via go-cmp, that two Run
// calls from identical inputs produce Branch values that are structurally
// equal — same Points (within tolerance) and exactly the same Markers.
func TestRunBranchIsStructurallyDeterministic(t *testing.T) {
	newOpts := func() Options {
		return Options{
			Ds0:              -0.05,
			DsMin:            0.001,
			DsMax:            0.1,
			GrowthFactor:     0.5,
			ShrinkFactor:     0.25,
			Theta:            0.5,
			PMin:             -1,
			PMax:             4,
			MaxSteps:         500,
			DesiredIter:      8,
			DetectFold:       true,
			TangentAlgorithm: TangentBordered,
			Solver:           linalg.Direct{},
			Newton:           scalarNewtonOpts(),
		}
	}

	x0 := vecops.NewDenseVector(1, []float64{1})
	branchA, _, errA := Run(scalarResidual, scalarJac, x0, 1, newOpts())
	if errA != nil {
		t.Fatalf("Run() error = %v", errA)
	}
	branchB, _, errB := Run(scalarResidual, scalarJac, x0, 1, newOpts())
	if errB != nil {
		t.Fatalf("Run() error = %v", errB)
	}

	if diff := cmp.Diff(branchA.Markers, branchB.Markers); diff != "" {
		t.Errorf("Markers differ between identical runs (-A +B):\n%s", diff)
	}
	if diff := cmp.Diff(branchA, branchB, vectorComparer); diff != "" {
		t.Errorf("Branch differs between identical runs (-A +B):\n%s", diff)
	}
}

func TestRescaleThetaFavoursTheLargerTangentComponent(t *testing.T) {
	// dp dominates: theta should be pulled toward the ceiling.
	dxSmall := vecops.NewDenseVector(1, []float64{0.01})
	if got := rescaleTheta(dxSmall, 1); got < 0.9 {
		t.Errorf("rescaleTheta(dp-dominant) = %v, want close to the 0.95 ceiling", got)
	}

	// dx dominates: theta should be pulled toward the floor.
	dxLarge := vecops.NewDenseVector(1, []float64{10})
	if got := rescaleTheta(dxLarge, 0.01); got > 0.1 {
		t.Errorf("rescaleTheta(dx-dominant) = %v, want close to the 0.05 floor", got)
	}

	// Balanced components land near 0.5.
	dxBalanced := vecops.NewDenseVector(1, []float64{1})
	if got := rescaleTheta(dxBalanced, 1); !floatsEqual(got, 0.5, 1e-9) {
		t.Errorf("rescaleTheta(balanced) = %v, want ~0.5", got)
	}
}

func TestRunWithArcLengthScalingStillTraversesFold(t *testing.T) {
	x0 := vecops.NewDenseVector(1, []float64{1})
	opts := Options{
		Ds0:                -0.05,
		DsMin:              0.001,
		DsMax:              0.1,
		GrowthFactor:       0.5,
		ShrinkFactor:       0.25,
		Theta:              0.5,
		PMin:               -1,
		PMax:               4,
		MaxSteps:           500,
		DesiredIter:        8,
		DetectFold:         true,
		DoArcLengthScaling: true,
		TangentAlgorithm:   TangentBordered,
		Solver:             linalg.Direct{},
		Newton:             scalarNewtonOpts(),
	}

	branch, _, err := Run(scalarResidual, scalarJac, x0, 1, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	foundNearZero := false
	for _, m := range branch.Markers {
		if m.Kind == MarkerFold && math.Abs(m.BracketedParameter) < 0.1 {
			foundNearZero = true
		}
	}
	if !foundNearZero {
		t.Errorf("no fold marker near p=0 among %v with DoArcLengthScaling enabled", branch.Markers)
	}
}
