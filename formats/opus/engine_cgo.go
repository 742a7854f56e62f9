//go:build opus

// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// Available reports whether the module was built with libopus.
const Available = true

func newEngine(sampleRate, channels int) (engine, error) {
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}
	return libopus{enc}, nil
}

type libopus struct {
	enc *opus.Encoder
}

func (l libopus) Encode(pcm []float32, out []byte) (int, error) {
	n, err := l.enc.EncodeFloat32(pcm, out)
	if err != nil {
		return 0, fmt.Errorf("opus encode error: %w", err)
	}
	return n, nil
}
