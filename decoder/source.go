// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

const probeSize = 64

// FrameHandler receives every decoded frame of a tracked stream. The frame
// is only valid during the call. Returning false stops decoding.
type FrameHandler func(streamIndex int, f *audio.Frame) bool

type stream struct {
	desc     audio.StreamDescriptor
	dec      audio.FrameDecoder
	cursor   Cursor
	finished bool
}

// Source reads an input file and delivers the decoded frames of the tracked
// streams that fall inside a time window.
type Source struct {
	file    *os.File
	demux   audio.Demuxer
	streams []audio.StreamDescriptor
	tracked []*stream // by stream index, nil when not tracked
	active  int
	window  Window
	drained bool
	logger  *zap.Logger
}

// Open opens path, tracks every stream whose media type is in types and
// positions the input at the start of window.
func Open(path string, window Window, types audio.MediaSet, opts ...Option) (*Source, error) {
	if types.Empty() || types.Has(audio.MediaUnknown) {
		return nil, fmt.Errorf("%w: %v", audio.ErrUnsupportedMediaType, types.Types())
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	logger := o.logger.With(zap.String("input", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}

	s := &Source{file: f, window: window, logger: logger}
	if err := s.open(path, types, o.registry); err != nil {
		s.Close()
		return nil, err
	}

	if window.StartUs > 0 {
		if err := s.demux.SeekTo(window.StartUs); err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: seek to %dus: %w", audio.ErrUnexpected, window.StartUs, err)
		}
	}

	logger.Debug("decode source opened",
		zap.Int("streams", len(s.streams)),
		zap.Int("tracked", s.active),
		zap.Int64("start_us", window.StartUs),
		zap.Int64("duration_us", window.DurationUs))

	return s, nil
}

func (s *Source) open(path string, types audio.MediaSet, registry *audio.Registry) error {
	container, err := detect(s.file, path, registry)
	if err != nil {
		return err
	}

	s.demux, err = container.OpenDemuxer(s.file)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", audio.ErrInputOpen, container.Name, err)
	}

	s.streams = s.demux.Streams()
	if len(s.streams) == 0 {
		return fmt.Errorf("%w: no streams", audio.ErrStreamInfo)
	}

	found := audio.NewMediaSet()
	for _, d := range s.streams {
		if d.Type == audio.MediaAudio && (d.SampleRate <= 0 || d.Channels <= 0) {
			return fmt.Errorf("%w: stream %d has %d channels at %d Hz",
				audio.ErrStreamInfo, d.Index, d.Channels, d.SampleRate)
		}
		found |= audio.NewMediaSet(d.Type)
	}
	if found&types != types {
		return fmt.Errorf("%w: want %v, have %v", audio.ErrStreamsNotFound, types.Types(), found.Types())
	}

	s.tracked = make([]*stream, len(s.streams))
	for i, d := range s.streams {
		if !types.Has(d.Type) {
			continue
		}

		factory, ok := registry.Decoder(d.Codec)
		if !ok {
			return fmt.Errorf("%w: no decoder for %q", audio.ErrCodecInit, d.Codec)
		}
		dec, err := factory(d)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", audio.ErrCodecInit, d.Codec, err)
		}
		s.tracked[i] = &stream{desc: d, dec: dec}
		s.active++
	}
	return nil
}

// detect picks the container by file extension, falling back to probing the
// leading bytes against every registered container.
func detect(f *os.File, path string, registry *audio.Registry) (audio.Container, error) {
	if c, ok := registry.ContainerForPath(path); ok && c.OpenDemuxer != nil {
		return c, nil
	}

	header := make([]byte, probeSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return audio.Container{}, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return audio.Container{}, fmt.Errorf("%w: %w", audio.ErrInputOpen, err)
	}

	for _, c := range registry.Containers() {
		if c.OpenDemuxer != nil && c.Probe != nil && c.Probe(header[:n]) {
			return c, nil
		}
	}
	return audio.Container{}, fmt.Errorf("%w: format not recognized", audio.ErrInputOpen)
}

// Decode runs one decoding step: it reads one packet and hands every frame
// it yields to handle. It returns audio.ErrEndOfStream once the input or
// every tracked window is exhausted.
func (s *Source) Decode(handle FrameHandler) error {
	if s.drained || s.active == 0 {
		return audio.ErrEndOfStream
	}

	pkt, err := s.demux.ReadPacket()
	if errors.Is(err, io.EOF) {
		s.drained = true
		if err := s.drain(handle); err != nil {
			return err
		}
		return audio.ErrEndOfStream
	}
	if err != nil {
		return fmt.Errorf("%w: read packet: %w", audio.ErrUnexpected, err)
	}

	if pkt.StreamIndex < 0 || pkt.StreamIndex >= len(s.tracked) {
		return nil
	}
	st := s.tracked[pkt.StreamIndex]
	if st == nil || st.finished {
		return nil
	}

	err = st.dec.SendPacket(pkt)
	if errors.Is(err, audio.ErrAgain) {
		// the decoder still holds frames; take them and offer the packet again
		if err := s.receive(pkt.StreamIndex, st, handle); err != nil {
			return err
		}
		if st.finished {
			return nil
		}
		err = st.dec.SendPacket(pkt)
	}
	if err != nil {
		return fmt.Errorf("%w: send packet: %w", audio.ErrUnexpected, err)
	}
	return s.receive(pkt.StreamIndex, st, handle)
}

// drain flushes the decoders of the unfinished streams at end of input.
func (s *Source) drain(handle FrameHandler) error {
	for i, st := range s.tracked {
		if st == nil || st.finished {
			continue
		}
		if err := st.dec.SendPacket(nil); err != nil {
			return fmt.Errorf("%w: flush decoder: %w", audio.ErrUnexpected, err)
		}
		if err := s.receive(i, st, handle); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) receive(index int, st *stream, handle FrameHandler) error {
	tb := st.desc.TimeBase
	for {
		f, err := st.dec.ReceiveFrame()
		if errors.Is(err, audio.ErrAgain) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: receive frame: %w", audio.ErrUnexpected, err)
		}

		if s.window.Bounded() {
			if !f.Discard {
				st.cursor.Advance(utils.RescaleRound(f.PTS, 1_000_000*tb.Num, tb.Den))
			}
			if st.cursor.Elapsed() > s.window.DurationUs {
				st.finished = true
				s.active--
				s.logger.Debug("stream window finished",
					zap.Int("stream", index),
					zap.Int64("elapsed_us", st.cursor.Elapsed()))
				return nil
			}
		}

		if !handle(index, f) {
			return fmt.Errorf("%w: frame handler stopped at stream %d", audio.ErrProcessingAborted, index)
		}
	}
}

// Stream returns the descriptor of the stream with the given index.
func (s *Source) Stream(i int) (audio.StreamDescriptor, error) {
	if i < 0 || i >= len(s.streams) {
		return audio.StreamDescriptor{}, fmt.Errorf("%w: %d", audio.ErrStreamNotFound, i)
	}
	return s.streams[i], nil
}

func (s *Source) SampleRate(i int) int {
	d, _ := s.Stream(i)
	return d.SampleRate
}

func (s *Source) Channels(i int) int {
	d, _ := s.Stream(i)
	return d.Channels
}

// ChannelLayout falls back to the default layout for the channel count when
// the container does not carry one.
func (s *Source) ChannelLayout(i int) audio.ChannelLayout {
	d, _ := s.Stream(i)
	if d.Layout == audio.LayoutUnspecified {
		return audio.DefaultLayout(d.Channels)
	}
	return d.Layout
}

func (s *Source) SampleFormat(i int) audio.SampleFormat {
	d, _ := s.Stream(i)
	return d.Format
}

// StreamCount returns the number of streams in the container, tracked or
// not.
func (s *Source) StreamCount() int { return len(s.streams) }

// Duration returns the container duration in microseconds, or
// audio.DurationUnknown.
func (s *Source) Duration() int64 {
	if s.demux == nil {
		return audio.DurationUnknown
	}
	return s.demux.Duration()
}

// Close releases the decoders, the demuxer and the file. It is safe to call
// more than once.
func (s *Source) Close() error {
	var errs []error
	for i, st := range s.tracked {
		if st != nil {
			errs = append(errs, st.dec.Close())
			s.tracked[i] = nil
		}
	}
	s.active = 0
	if s.demux != nil {
		errs = append(errs, s.demux.Close())
		s.demux = nil
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
		s.file = nil
	}
	return errors.Join(errs...)
}
