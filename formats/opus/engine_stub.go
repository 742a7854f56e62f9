//go:build !opus

// SPDX-License-Identifier: EPL-2.0

package opus

// Available reports whether the module was built with libopus.
const Available = false

func newEngine(int, int) (engine, error) {
	return nil, ErrUnavailable
}
