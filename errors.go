// SPDX-License-Identifier: EPL-2.0

package voxmix

import "errors"

var ErrUnsupportedFormat = errors.New("no decoder registered for format")
