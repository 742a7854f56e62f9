// SPDX-License-Identifier: EPL-2.0

// Package transcoder runs the decode, resample and encode stages over one
// input file and writes one output file.
package transcoder

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/buffer"
	"github.com/ik5/audxcode/decoder"
	"github.com/ik5/audxcode/encoder"
	"github.com/ik5/audxcode/metrics"
	"github.com/ik5/audxcode/resampler"
)

// Transcoder converts the audio stream of an input file into an output
// file. A Transcoder may be reused, but not by concurrent calls.
type Transcoder struct {
	registry *audio.Registry
	codec    string
	logger   *zap.Logger
	metrics  *metrics.Metrics
	state    atomic.Int32
}

// New returns a Transcoder that looks containers and codecs up in registry.
func New(registry *audio.Registry, opts ...Option) *Transcoder {
	if registry == nil {
		registry = audio.NewRegistry()
	}
	t := &Transcoder{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the phase of the current or last Transcode call.
func (t *Transcoder) State() State { return State(t.state.Load()) }

func (t *Transcoder) setState(logger *zap.Logger, s State) {
	t.state.Store(int32(s))
	logger.Debug("state changed", zap.Stringer("state", s))
}

// Transcode converts the single audio stream of in into out, limited to
// [startMs, endMs) of the input playback time. An endMs of 0 means the end
// of the input. out must not exist; it is removed again when the
// run fails.
func (t *Transcoder) Transcode(ctx context.Context, in, out string, startMs, endMs int64) (err error) {
	logger := t.logger.With(
		zap.String("run", uuid.NewString()),
		zap.String("input", in),
		zap.String("output", out))

	t.setState(logger, StateInit)
	t.metrics.RecordRunStarted()
	started := time.Now()

	var r *run
	defer func() {
		elapsed := time.Since(started)
		if err != nil {
			t.setState(logger, StateFailed)
			t.metrics.RecordRunFailed(elapsed.Seconds(), errorKind(err))
			logger.Warn("transcode failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return
		}
		t.setState(logger, StateFinished)
		t.metrics.RecordRunSucceeded(elapsed.Seconds(), r.sink.PacketsWritten(), r.sink.BytesWritten())
		logger.Info("transcode finished",
			zap.Duration("elapsed", elapsed),
			zap.Int64("packets", r.sink.PacketsWritten()),
			zap.Int64("bytes", r.sink.BytesWritten()))
	}()

	window, err := decoder.WindowFromMillis(startMs, endMs)
	if err != nil {
		return err
	}

	r, err = t.open(in, out, window, logger)
	if err != nil {
		return err
	}
	success := false
	defer func() {
		if cerr := r.close(success); cerr != nil {
			logger.Warn("release failed", zap.Error(cerr))
		}
	}()

	t.setState(logger, StateDecoding)
	if err := r.decode(ctx); err != nil {
		return err
	}

	t.setState(logger, StateDraining)
	if err := r.drain(); err != nil {
		return err
	}

	success = true
	return nil
}

// open acquires every resource of a run. Whatever was acquired before a
// failure is released again.
func (t *Transcoder) open(in, out string, window decoder.Window, logger *zap.Logger) (*run, error) {
	src, err := decoder.Open(in, window, audio.NewMediaSet(audio.MediaAudio),
		decoder.WithRegistry(t.registry), decoder.WithLogger(logger))
	if err != nil {
		return nil, mapInputError(err)
	}
	r := &run{src: src, metrics: t.metrics, logger: logger}

	if n := src.StreamCount(); n != 1 {
		r.close(false)
		return nil, fmt.Errorf("%w: %d streams, expected a single audio stream",
			audio.ErrUnsupportedInputFormat, n)
	}

	in0, err := src.Stream(0)
	if err != nil {
		r.close(false)
		return nil, mapInputError(err)
	}
	want := audio.StreamConfig{
		Codec:      t.codec,
		SampleRate: in0.SampleRate,
		Channels:   in0.Channels,
		Layout:     src.ChannelLayout(0),
		Format:     in0.Format,
	}

	r.sink, err = encoder.Open(out, []audio.StreamConfig{want},
		encoder.WithRegistry(t.registry), encoder.WithLogger(logger))
	if err != nil {
		r.close(false)
		return nil, mapOutputError(err)
	}

	got, err := r.sink.Config(0)
	if err != nil {
		r.close(false)
		return nil, mapOutputError(err)
	}
	r.frameBytes, err = r.sink.FrameByteSize(0)
	if err != nil {
		r.close(false)
		return nil, mapOutputError(err)
	}

	r.stage, err = resampler.New(resampler.Config{
		InRate:      in0.SampleRate,
		InChannels:  in0.Channels,
		InFormat:    in0.Format,
		OutRate:     got.SampleRate,
		OutChannels: got.Channels,
		OutFormat:   got.Format,
	})
	if err != nil {
		r.close(false)
		return nil, err
	}
	r.inStride = in0.Format.RowStride(in0.Channels)

	r.buf, err = buffer.New(got.Format.Planes(got.Channels))
	if err != nil {
		r.close(false)
		return nil, fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}

	logger.Info("transcode started",
		zap.Int("in_rate", in0.SampleRate),
		zap.Int("in_channels", in0.Channels),
		zap.Stringer("in_format", in0.Format),
		zap.String("codec", got.Codec),
		zap.Int("out_rate", got.SampleRate),
		zap.Int("out_channels", got.Channels),
		zap.Stringer("out_format", got.Format),
		zap.Int64("start_us", window.StartUs),
		zap.Int64("duration_us", window.DurationUs))

	return r, nil
}

// run holds the resources of one Transcode call.
type run struct {
	src        *decoder.Source
	sink       *encoder.Sink
	stage      *resampler.Stage
	buf        *buffer.SampleBuffer
	inStride   int
	frameBytes int
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// decode feeds every frame of the window through the stage into the buffer
// and encodes every full frame the buffer holds.
func (r *run) decode(ctx context.Context) error {
	var cause error
	handle := func(_ int, f *audio.Frame) bool {
		if err := ctx.Err(); err != nil {
			cause = fmt.Errorf("%w: %w", audio.ErrProcessingAborted, err)
			return false
		}
		if err := r.push(f); err != nil {
			cause = err
			return false
		}
		r.metrics.RecordFrameDecoded(f.Samples)
		return true
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrProcessingAborted, err)
		}

		err := r.src.Decode(handle)
		if errors.Is(err, audio.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			if cause != nil {
				return cause
			}
			return mapInputError(err)
		}
	}
}

func (r *run) push(f *audio.Frame) error {
	if f.Samples == 0 {
		return nil
	}
	inBytes := f.Samples * r.inStride

	res, err := r.buf.Reserve(r.stage.RequiredOutputBytes(inBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}
	n, err := r.stage.Resample(f.Planes, inBytes, res.Rows())
	if err != nil {
		res.Cancel()
		return err
	}
	if err := res.Commit(n); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}

	for n := r.fullBlock(); n > 0; n = r.fullBlock() {
		if err := r.sink.EncodeBlock(0, r.buf, n); err != nil {
			return err
		}
	}
	return nil
}

// fullBlock returns the row bytes of the next block the buffer can fill, or
// 0 when it holds less than one encoder frame. An encoder without a fixed
// frame size takes the whole buffer.
func (r *run) fullBlock() int {
	switch n := r.buf.Len(); {
	case r.frameBytes == 0:
		return n
	case n >= r.frameBytes:
		return r.frameBytes
	}
	return 0
}

// drain flushes the stage, encodes what is left in blocks of at most one
// encoder frame and finishes the output.
func (r *run) drain() error {
	if tail := r.stage.FlushBytes(); tail > 0 {
		res, err := r.buf.Reserve(tail)
		if err != nil {
			return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
		}
		n, err := r.stage.Flush(res.Rows())
		if err != nil {
			res.Cancel()
			return err
		}
		if err := res.Commit(n); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
		}
	}

	for r.buf.Len() > 0 {
		n := r.buf.Len()
		if r.frameBytes > 0 {
			n = min(n, r.frameBytes)
		}
		if err := r.sink.EncodeBlock(0, r.buf, n); err != nil {
			return err
		}
	}
	return r.sink.Finish()
}

// close releases everything the run acquired. The output survives only
// with success set.
func (r *run) close(success bool) error {
	var errs []error
	if r.src != nil {
		errs = append(errs, r.src.Close())
	}
	if r.stage != nil {
		errs = append(errs, r.stage.Close())
	}
	if r.sink != nil {
		errs = append(errs, r.sink.Close(success))
	}
	if r.buf != nil {
		r.buf.Release()
	}
	return errors.Join(errs...)
}
