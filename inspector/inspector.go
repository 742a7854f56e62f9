// SPDX-License-Identifier: EPL-2.0

// Package inspector reports properties of media files without transcoding
// them.
package inspector

import (
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/decoder"
	"github.com/ik5/audxcode/utils"
)

// AudioDuration returns the playback duration of the audio in path. The
// container duration is used when the container records one; otherwise the
// audio is decoded to the end and the timestamp of the last frame is
// reported.
func AudioDuration(path string, opts ...decoder.Option) (time.Duration, error) {
	window := decoder.Window{DurationUs: decoder.Unbounded}
	src, err := decoder.Open(path, window, audio.NewMediaSet(audio.MediaAudio), opts...)
	if err != nil {
		return 0, mapError(err)
	}
	defer src.Close()

	if us := src.Duration(); us != audio.DurationUnknown {
		return time.Duration(us) * time.Microsecond, nil
	}

	var lastUs int64
	handle := func(i int, f *audio.Frame) bool {
		desc, _ := src.Stream(i)
		tb := desc.TimeBase
		lastUs = utils.RescaleRound(f.PTS, 1_000_000*tb.Num, tb.Den)
		return true
	}
	for {
		err := src.Decode(handle)
		if errors.Is(err, audio.ErrEndOfStream) {
			break
		}
		if err != nil {
			return 0, mapError(err)
		}
	}
	return time.Duration(lastUs) * time.Microsecond, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, audio.ErrUnsupportedMediaType),
		errors.Is(err, audio.ErrStreamsNotFound),
		errors.Is(err, audio.ErrCodecInit):
		return fmt.Errorf("%w: %w", audio.ErrUnsupportedInputFormat, err)
	case errors.Is(err, audio.ErrInputOpen), errors.Is(err, audio.ErrUnexpected):
		return err
	}
	return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
}
