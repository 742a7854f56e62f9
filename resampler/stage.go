// SPDX-License-Identifier: EPL-2.0

// Package resampler adapts the audio.Resampler engine to byte-counted rows,
// the unit the pipeline buffers work in.
package resampler

import (
	"errors"
	"fmt"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// ErrClosed is returned by a stage after Close.
var ErrClosed = errors.New("resample stage closed")

// Config describes both sides of a conversion.
type Config struct {
	InRate      int
	InChannels  int
	InFormat    audio.SampleFormat
	OutRate     int
	OutChannels int
	OutFormat   audio.SampleFormat
}

// Stage converts rows of samples from one rate, channel count and sample
// format to another. Sizes are bytes per row: one row per channel for planar
// formats, a single interleaved row otherwise.
type Stage struct {
	cfg    Config
	engine *audio.Resampler
}

// New opens a stage. Any invalid configuration fails with
// audio.ErrUnexpected.
func New(cfg Config) (*Stage, error) {
	engine, err := audio.NewResampler(audio.ResamplerConfig{
		InRate:      cfg.InRate,
		InChannels:  cfg.InChannels,
		InFormat:    cfg.InFormat,
		OutRate:     cfg.OutRate,
		OutChannels: cfg.OutChannels,
		OutFormat:   cfg.OutFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open resampler: %w", audio.ErrUnexpected, err)
	}
	return &Stage{cfg: cfg, engine: engine}, nil
}

func (s *Stage) Config() Config { return s.cfg }

func (s *Stage) inStride() int  { return s.cfg.InFormat.RowStride(s.cfg.InChannels) }
func (s *Stage) outStride() int { return s.cfg.OutFormat.RowStride(s.cfg.OutChannels) }

// RequiredOutputBytes returns an upper bound on the bytes per output row
// that resampling inputBytes bytes per input row can produce.
func (s *Stage) RequiredOutputBytes(inputBytes int) int {
	samples := inputBytes / s.cfg.InFormat.BytesPerSample()
	if !s.cfg.InFormat.IsPlanar() {
		samples /= s.cfg.InChannels
	}
	out := utils.Rescale(int64(samples), int64(s.cfg.OutRate), int64(s.cfg.InRate), true)
	return int(out) * s.outStride()
}

// Resample converts inputBytes bytes of every input row into out and
// returns the bytes written per output row. out rows must hold
// RequiredOutputBytes(inputBytes) bytes.
func (s *Stage) Resample(in [][]byte, inputBytes int, out [][]byte) (int, error) {
	if s.engine == nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrUnexpected, ErrClosed)
	}

	n, err := s.engine.Convert(in, inputBytes/s.inStride(), out)
	if err != nil {
		return 0, fmt.Errorf("%w: resample: %w", audio.ErrUnexpected, err)
	}
	return n * s.outStride(), nil
}

// FlushBytes returns the bytes per output row Flush will write.
func (s *Stage) FlushBytes() int {
	if s.engine == nil {
		return 0
	}
	return s.engine.Pending() * s.outStride()
}

// Flush writes the output held back at the end of the input and returns
// the bytes written per row.
func (s *Stage) Flush(out [][]byte) (int, error) {
	if s.engine == nil {
		return 0, fmt.Errorf("%w: %w", audio.ErrUnexpected, ErrClosed)
	}

	n, err := s.engine.Flush(out)
	if err != nil {
		return 0, fmt.Errorf("%w: flush: %w", audio.ErrUnexpected, err)
	}
	return n * s.outStride(), nil
}

// Close releases the engine. It is safe to call more than once.
func (s *Stage) Close() error {
	s.engine = nil
	return nil
}
