// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fold

import "errors"

// ErrMarkerOutOfRange is returned when markerIndex does not index an
// existing branch marker.
var ErrMarkerOutOfRange = errors.New("fold: marker index out of range")

// ErrNotAFoldMarker is returned when the referenced marker is not a fold.
var ErrNotAFoldMarker = errors.New("fold: marker is not a fold")
