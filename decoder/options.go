// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"go.uber.org/zap"

	"github.com/ik5/audxcode/audio"
)

type options struct {
	registry *audio.Registry
	logger   *zap.Logger
}

// Option configures Open.
type Option func(*options)

// WithRegistry sets the registry containers and decoders are looked up in.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) { o.registry = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = audio.NewRegistry()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
