// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"fmt"

	"github.com/ik5/audxcode/audio"
)

// Unbounded is the DurationUs of a window without an end.
const Unbounded int64 = -1

// Window is the part of the input, in microseconds of playback time, that
// the source delivers.
type Window struct {
	StartUs    int64
	DurationUs int64
}

// WindowFromMillis builds a window from caller milliseconds. An endMs of 0
// leaves the window open-ended.
func WindowFromMillis(startMs, endMs int64) (Window, error) {
	w := Window{StartUs: startMs * 1000, DurationUs: Unbounded}
	if endMs != 0 {
		w.DurationUs = (endMs - startMs) * 1000
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Bounded() bool { return w.DurationUs != Unbounded }

func (w Window) Validate() error {
	if w.StartUs < 0 {
		return fmt.Errorf("%w: negative start %dus", audio.ErrInvalidWindow, w.StartUs)
	}
	if w.Bounded() && w.DurationUs <= 0 {
		return fmt.Errorf("%w: duration %dus", audio.ErrInvalidWindow, w.DurationUs)
	}
	return nil
}

// Cursor tracks the playback time elapsed on one stream. The first
// timestamp only primes the cursor, and a previous timestamp of exactly 0
// is treated as not yet observed.
type Cursor struct {
	prevPTS   int64
	elapsedUs int64
}

// Advance records the timestamp of an accepted frame, in microseconds.
func (c *Cursor) Advance(ptsUs int64) {
	if c.prevPTS != 0 {
		c.elapsedUs += ptsUs - c.prevPTS
	}
	c.prevPTS = ptsUs
}

func (c *Cursor) Elapsed() int64 { return c.elapsedUs }
