// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"
	"io"
	"slices"

	"github.com/ik5/audxcode/audio"
)

// maxPacketSize is the largest Opus packet
const maxPacketSize = 4000

// EncoderFactory opens Opus encoders with 20ms frames.
type EncoderFactory struct{}

func (EncoderFactory) SupportedSampleRates() []int { return SupportedSampleRates }

func (EncoderFactory) SupportedLayouts() []audio.ChannelLayout {
	return []audio.ChannelLayout{audio.LayoutMono, audio.LayoutStereo}
}

func (EncoderFactory) SupportedFormats() []audio.SampleFormat {
	return []audio.SampleFormat{audio.FormatF32P, audio.FormatS16P}
}

func (f EncoderFactory) NewEncoder(cfg audio.StreamConfig) (audio.FrameEncoder, error) {
	if !slices.Contains(SupportedSampleRates, cfg.SampleRate) {
		return nil, fmt.Errorf("%w: opus cannot encode at %d Hz", audio.ErrUnsupportedFormat, cfg.SampleRate)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return nil, fmt.Errorf("%w: opus cannot encode %d channels", audio.ErrOutOfRange, cfg.Channels)
	}
	if !slices.Contains(f.SupportedFormats(), cfg.Format) {
		return nil, fmt.Errorf("%w: opus cannot encode %s", audio.ErrUnsupportedFormat, cfg.Format)
	}

	eng, err := newEngine(cfg.SampleRate, cfg.Channels)
	if err != nil {
		return nil, err
	}
	return &encoder{
		eng:       eng,
		cfg:       cfg,
		frameSize: cfg.SampleRate / 50,
	}, nil
}

// engine encodes one frame of interleaved float samples
type engine interface {
	Encode(pcm []float32, out []byte) (int, error)
}

type encoder struct {
	eng       engine
	cfg       audio.StreamConfig
	frameSize int
	scratch   [][]float32
	pcm       []float32
	queue     []*audio.Packet
	next      int64
	draining  bool
}

func (e *encoder) FrameSize() int { return e.frameSize }

// SendFrame encodes f. A frame shorter than FrameSize is padded with silence;
// the packet duration still counts only the real samples.
func (e *encoder) SendFrame(f *audio.Frame) error {
	if f == nil {
		e.draining = true
		return nil
	}
	if e.draining {
		return fmt.Errorf("%w: frame after flush", audio.ErrUnexpected)
	}
	if f.Samples > e.frameSize {
		return fmt.Errorf("%w: %d samples, frame size is %d", audio.ErrOutOfRange, f.Samples, e.frameSize)
	}

	channels := e.cfg.Channels
	if len(e.scratch) != channels {
		e.scratch = make([][]float32, channels)
		for c := range e.scratch {
			e.scratch[c] = make([]float32, e.frameSize)
		}
		e.pcm = make([]float32, e.frameSize*channels)
	}
	if err := audio.DecodeSamples(e.cfg.Format, channels, f.Planes, f.Samples, e.scratch); err != nil {
		return err
	}

	clear(e.pcm)
	for i := range f.Samples {
		for c := range channels {
			e.pcm[i*channels+c] = e.scratch[c][i]
		}
	}

	out := make([]byte, maxPacketSize)
	n, err := e.eng.Encode(e.pcm, out)
	if err != nil {
		return fmt.Errorf("%w: %w", audio.ErrUnexpected, err)
	}

	e.queue = append(e.queue, &audio.Packet{PTS: e.next, Duration: int64(f.Samples), Data: out[:n]})
	e.next += int64(f.Samples)
	return nil
}

func (e *encoder) ReceivePacket() (*audio.Packet, error) {
	if len(e.queue) > 0 {
		pkt := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		return pkt, nil
	}
	if e.draining {
		return nil, io.EOF
	}
	return nil, audio.ErrAgain
}

func (e *encoder) Close() error {
	e.queue = nil
	return nil
}
