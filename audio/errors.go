// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrUnsupportedMediaType   = errors.New("unsupported media type")
	ErrInputOpen              = errors.New("input could not be opened")
	ErrStreamInfo             = errors.New("stream info could not be determined")
	ErrStreamsNotFound        = errors.New("requested streams not found")
	ErrCodecInit              = errors.New("codec could not be initialized")
	ErrUnsupportedInputFormat = errors.New("unsupported input format")
	ErrOutputExists           = errors.New("output already exists")
	ErrOutputOpen             = errors.New("output could not be opened")
	ErrProcessingAborted      = errors.New("processing aborted")
	ErrUnexpected             = errors.New("unexpected error")
	ErrOutOfRange             = errors.New("out of range")
	ErrEndOfStream            = errors.New("end of stream")
	ErrStreamNotFound         = errors.New("stream not found")
	ErrInvalidWindow          = errors.New("invalid time window")
	ErrUnsupportedFormat      = errors.New("unsupported sample format")

	// ErrAgain is returned by engines that need more input before they can
	// produce output.
	ErrAgain = errors.New("resource temporarily unavailable")
)
