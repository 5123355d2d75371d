// SPDX-License-Identifier: MIT

package native

import "errors"

// ErrUnavailable reports that the native backend is not compiled in.
var ErrUnavailable = errors.New("native: backend unavailable")

// Name identifies the backend in capability reports and logs.
const Name = "gonum"
