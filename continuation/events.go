// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuation

// detectFold reports whether the tangent's parameter component dp changed
// sign between two consecutive accepted points, and if so, the parameter
// value at which a linear interpolation of p against dp crosses zero
// (spec.md §4.5 step 5, testable property 5).
func detectFold(prevDp, curDp, prevP, curP float64) (bracketP float64, found bool) {
	if prevDp == 0 || curDp == 0 {
		return 0, false
	}
	if (prevDp > 0) == (curDp > 0) {
		return 0, false
	}
	t := prevDp / (prevDp - curDp)
	return prevP + t*(curP-prevP), true
}
