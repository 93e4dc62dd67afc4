// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuation

import "errors"

// ErrInitialNewtonFailed is returned when the initial Newton solve at
// (x0, p0) does not converge (spec.md §4.5's Initialisation).
var ErrInitialNewtonFailed = errors.New("continuation: initial Newton solve did not converge")

// ErrStepSizeFloor is returned when a step is rejected twice in a row while
// ds is already at DsMin (spec.md §7's StepSizeFloor). DomainExit and
// UserAbort are not errors: Run returns them as a nil error with the branch
// accumulated so far.
var ErrStepSizeFloor = errors.New("continuation: step size floor reached after repeated rejection")
