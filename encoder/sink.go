// SPDX-License-Identifier: EPL-2.0

// Package encoder writes buffered samples to an output file through the
// registered encoders and container muxer.
package encoder

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/buffer"
)

type stream struct {
	cfg       audio.StreamConfig
	enc       audio.FrameEncoder
	frameSize int
	pts       int64
}

// Sink encodes blocks of samples into one output file. The file only
// survives if Finish succeeds and Close is called with success set.
type Sink struct {
	path     string
	file     *os.File
	muxer    audio.Muxer
	streams  []*stream
	packets  int64
	bytes    int64
	finished bool
	logger   *zap.Logger
}

// Open negotiates an encoder for every requested stream, then creates path
// and writes the container header. An existing file is never overwritten.
func Open(path string, streams []audio.StreamConfig, opts ...Option) (*Sink, error) {
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: no output streams", audio.ErrCodecInit)
	}

	o := newOptions(opts)
	s := &Sink{path: path, logger: o.logger.With(zap.String("output", path))}

	container, ok := o.registry.ContainerForPath(path)
	if !ok || container.NewMuxer == nil {
		return nil, fmt.Errorf("%w: no writable container for %q", audio.ErrOutputOpen, path)
	}

	configs := make([]audio.StreamConfig, len(streams))
	for i, want := range streams {
		st, err := openStream(o.registry, container, want)
		if err != nil {
			s.Close(false)
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
		s.streams = append(s.streams, st)
		configs[i] = st.cfg

		s.logger.Debug("encoder opened",
			zap.Int("stream", i),
			zap.String("codec", st.cfg.Codec),
			zap.Int("sample_rate", st.cfg.SampleRate),
			zap.Int("channels", st.cfg.Channels),
			zap.Stringer("format", st.cfg.Format),
			zap.Int("frame_size", st.frameSize))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.Close(false)
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %w", audio.ErrOutputExists, err)
		}
		return nil, fmt.Errorf("%w: %w", audio.ErrOutputOpen, err)
	}
	s.file = f

	s.muxer, err = container.NewMuxer(f, configs)
	if err != nil {
		s.Close(false)
		return nil, fmt.Errorf("%w: %s muxer: %w", audio.ErrOutputOpen, container.Name, err)
	}
	if err := s.muxer.WriteHeader(); err != nil {
		s.Close(false)
		return nil, fmt.Errorf("%w: write header: %w", audio.ErrOutputOpen, err)
	}

	return s, nil
}

func openStream(registry *audio.Registry, container audio.Container, want audio.StreamConfig) (*stream, error) {
	if want.Codec == "" {
		want.Codec = container.DefaultCodec
	}
	factory, ok := registry.Encoder(want.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: no encoder for %q", audio.ErrCodecInit, want.Codec)
	}

	cfg := negotiate(factory, want)
	enc, err := factory.NewEncoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrCodecInit, cfg.Codec, err)
	}
	return &stream{cfg: cfg, enc: enc, frameSize: enc.FrameSize()}, nil
}

func (s *Sink) stream(i int) (*stream, error) {
	if i < 0 || i >= len(s.streams) {
		return nil, fmt.Errorf("%w: %d", audio.ErrStreamNotFound, i)
	}
	return s.streams[i], nil
}

// Config returns the negotiated configuration of stream i.
func (s *Sink) Config(i int) (audio.StreamConfig, error) {
	st, err := s.stream(i)
	if err != nil {
		return audio.StreamConfig{}, err
	}
	return st.cfg, nil
}

// FrameByteSize returns the bytes per buffer row one encoder frame of
// stream i takes. It is 0 when the encoder accepts frames of any size.
func (s *Sink) FrameByteSize(i int) (int, error) {
	st, err := s.stream(i)
	if err != nil {
		return 0, err
	}
	return max(st.frameSize, 0) * st.cfg.Format.RowStride(st.cfg.Channels), nil
}

// EncodeBlock encodes the first n bytes of every row of buf as one frame of
// stream i and removes them from buf once every resulting packet is written.
// On failure buf is left as it was.
func (s *Sink) EncodeBlock(i int, buf *buffer.SampleBuffer, n int) error {
	st, err := s.stream(i)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}
	if s.muxer == nil || s.finished {
		return fmt.Errorf("%w: sink not writable", audio.ErrUnexpected)
	}
	if n <= 0 {
		return fmt.Errorf("%w: empty block", audio.ErrUnexpected)
	}

	rows, err := buf.Front(n)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}

	samples := n / st.cfg.Format.RowStride(st.cfg.Channels)
	frame := &audio.Frame{Planes: rows, Samples: samples, PTS: st.pts}
	if err := st.enc.SendFrame(frame); err != nil {
		return fmt.Errorf("%w: encode: %w", audio.ErrUnexpected, err)
	}
	if err := s.drain(i, st); err != nil {
		return err
	}
	st.pts += int64(samples)

	if err := buf.ConsumeFront(n); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}
	return nil
}

// drain writes every packet the encoder of stream i has ready.
func (s *Sink) drain(i int, st *stream) error {
	for {
		pkt, err := st.enc.ReceivePacket()
		if errors.Is(err, audio.ErrAgain) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: receive packet: %w", audio.ErrUnexpected, err)
		}

		pkt.StreamIndex = i
		if err := s.muxer.WritePacket(pkt); err != nil {
			return fmt.Errorf("%w: write packet: %w", audio.ErrUnexpected, err)
		}
		s.packets++
		s.bytes += int64(len(pkt.Data))
	}
}

// Finish flushes every encoder and writes the container trailer.
func (s *Sink) Finish() error {
	if s.finished {
		return nil
	}
	if s.muxer == nil {
		return fmt.Errorf("%w: sink not writable", audio.ErrUnexpected)
	}

	for i, st := range s.streams {
		if err := st.enc.SendFrame(nil); err != nil {
			return fmt.Errorf("%w: flush encoder: %w", audio.ErrUnexpected, err)
		}
		if err := s.drain(i, st); err != nil {
			return err
		}
	}
	if err := s.muxer.WriteTrailer(); err != nil {
		return fmt.Errorf("%w: write trailer: %w", audio.ErrUnexpected, err)
	}

	s.finished = true
	s.logger.Debug("output finished", zap.Int64("packets", s.packets), zap.Int64("bytes", s.bytes))
	return nil
}

// PacketsWritten returns the number of packets handed to the muxer.
func (s *Sink) PacketsWritten() int64 { return s.packets }

// BytesWritten returns the encoded payload bytes handed to the muxer.
func (s *Sink) BytesWritten() int64 { return s.bytes }

// Close releases the encoders and the output file. Unless success is set
// and Finish completed, the output file is removed. It is safe to call more
// than once.
func (s *Sink) Close(success bool) error {
	var errs []error
	for _, st := range s.streams {
		errs = append(errs, st.enc.Close())
	}
	s.streams = nil

	if s.muxer != nil {
		errs = append(errs, s.muxer.Close())
		s.muxer = nil
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
		s.file = nil

		if !success || !s.finished {
			if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			s.logger.Debug("incomplete output removed")
		}
	}
	return errors.Join(errs...)
}
