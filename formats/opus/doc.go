// SPDX-License-Identifier: EPL-2.0

// Package opus writes Ogg Opus files.
//
// The encoder wraps libopus through gopkg.in/hraban/opus.v2, which needs cgo
// and is only compiled with the opus build tag:
//
//	go build -tags opus ./...
//
// Without the tag the container is still registered but opening an encoder
// fails with ErrUnavailable.
//
// Frames are 20ms long. The final short frame is padded with silence and the
// end-of-stream granule position tells players how much of it to drop.
package opus
