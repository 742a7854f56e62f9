// SPDX-License-Identifier: EPL-2.0

package transcoder

import (
	"go.uber.org/zap"

	"github.com/ik5/audxcode/metrics"
)

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithCodec sets the output codec. The default is the output container's
// default codec.
func WithCodec(codec string) Option {
	return func(t *Transcoder) { t.codec = codec }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Transcoder) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMetrics records every run in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transcoder) { t.metrics = m }
}
