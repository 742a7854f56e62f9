// SPDX-License-Identifier: EPL-2.0

package transcoder

import (
	"errors"
	"fmt"

	"github.com/ik5/audxcode/audio"
)

// mapInputError folds the decode side failures into the kinds a caller of
// Transcode sees.
func mapInputError(err error) error {
	switch {
	case errors.Is(err, audio.ErrUnsupportedMediaType),
		errors.Is(err, audio.ErrStreamsNotFound):
		return fmt.Errorf("%w: %w", audio.ErrUnsupportedInputFormat, err)
	case errors.Is(err, audio.ErrInputOpen),
		errors.Is(err, audio.ErrInvalidWindow),
		errors.Is(err, audio.ErrProcessingAborted),
		errors.Is(err, audio.ErrUnexpected):
		return err
	}
	return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
}

func mapOutputError(err error) error {
	if errors.Is(err, audio.ErrOutputExists) || errors.Is(err, audio.ErrOutputOpen) {
		return err
	}
	return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{audio.ErrUnsupportedInputFormat, "unsupported_input_format"},
	{audio.ErrInputOpen, "input_open"},
	{audio.ErrInvalidWindow, "invalid_window"},
	{audio.ErrOutputExists, "output_exists"},
	{audio.ErrOutputOpen, "output_open"},
	{audio.ErrProcessingAborted, "processing_aborted"},
}

// errorKind names the error kind of a failed run for metrics labels.
func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "unexpected"
}
