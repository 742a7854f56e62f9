// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"slices"
)

// PCMCodec is the name of the PCM encoder. Its packets carry interleaved
// little-endian samples in the packed variant of the negotiated format.
const PCMCodec = "pcm"

// Codec names of PCM input streams, by payload format.
const (
	CodecPCMU8  = "pcm_u8"
	CodecPCMS16 = "pcm_s16le"
	CodecPCMS32 = "pcm_s32le"
	CodecPCMF32 = "pcm_f32le"
)

var pcmCodecs = map[SampleFormat]string{
	FormatU8:  CodecPCMU8,
	FormatS16: CodecPCMS16,
	FormatS32: CodecPCMS32,
	FormatF32: CodecPCMF32,
}

// PCMCodecName returns the input codec name for PCM packets in format.
func PCMCodecName(format SampleFormat) string { return pcmCodecs[format.Packed()] }

// RegisterPCM registers the PCM decoders and the PCM encoder.
func RegisterPCM(r *Registry) {
	for format, name := range pcmCodecs {
		r.RegisterDecoder(name, PCMDecoderFactory(format))
	}
	r.RegisterEncoder(PCMCodec, PCMEncoderFactory{})
}

// PCMFrameSize is the number of samples per channel the PCM encoder expects
// in every frame except the last one.
const PCMFrameSize = 1024

// pcmDecoder turns packets that already carry PCM into frames laid out as
// the stream descriptor says.
type pcmDecoder struct {
	payload  SampleFormat
	desc     StreamDescriptor
	frame    *Frame
	draining bool
	scratch  [][]float32
}

// NewPCMDecoder returns a decoder for packets whose payload holds interleaved
// samples in payload format. Frames come out in desc.Format.
func NewPCMDecoder(payload SampleFormat, desc StreamDescriptor) (FrameDecoder, error) {
	if payload.IsPlanar() || payload.BytesPerSample() == 0 {
		return nil, fmt.Errorf("%w: payload %s", ErrUnsupportedFormat, payload)
	}
	if desc.Format.BytesPerSample() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, desc.Format)
	}
	if desc.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", ErrOutOfRange, desc.Channels)
	}

	return &pcmDecoder{payload: payload, desc: desc}, nil
}

// PCMDecoderFactory adapts NewPCMDecoder to a DecoderFactory.
func PCMDecoderFactory(payload SampleFormat) DecoderFactory {
	return func(desc StreamDescriptor) (FrameDecoder, error) {
		return NewPCMDecoder(payload, desc)
	}
}

func (d *pcmDecoder) SendPacket(pkt *Packet) error {
	if pkt == nil {
		d.draining = true
		return nil
	}
	if d.frame != nil {
		return ErrAgain
	}

	channels := d.desc.Channels
	stride := d.payload.BytesPerSample() * channels
	n := len(pkt.Data) / stride
	if n == 0 {
		return nil
	}

	out := d.desc.Format
	planes := AllocPlanes(out, channels, n)

	switch out {
	case d.payload:
		copy(planes[0], pkt.Data[:n*stride])
	case d.payload.Planar():
		Deinterleave(planes, pkt.Data, d.payload.BytesPerSample(), n)
	default:
		d.scratch = growFloats(d.scratch, channels, n)
		if err := DecodeSamples(d.payload, channels, [][]byte{pkt.Data}, n, d.scratch); err != nil {
			return err
		}
		if err := EncodeSamples(out, channels, d.scratch, n, planes); err != nil {
			return err
		}
	}

	d.frame = &Frame{Planes: planes, Samples: n, PTS: pkt.PTS, Discard: pkt.Discard}
	return nil
}

func (d *pcmDecoder) ReceiveFrame() (*Frame, error) {
	if d.frame != nil {
		f := d.frame
		d.frame = nil
		return f, nil
	}
	if d.draining {
		return nil, io.EOF
	}
	return nil, ErrAgain
}

func (d *pcmDecoder) Close() error { return nil }

// PCMEncoderFactory opens encoders that write planar frames out as
// interleaved little-endian PCM packets.
type PCMEncoderFactory struct{}

func (PCMEncoderFactory) SupportedSampleRates() []int       { return nil }
func (PCMEncoderFactory) SupportedLayouts() []ChannelLayout { return nil }
func (PCMEncoderFactory) SupportedFormats() []SampleFormat {
	return []SampleFormat{FormatS16P, FormatS32P}
}

func (f PCMEncoderFactory) NewEncoder(cfg StreamConfig) (FrameEncoder, error) {
	if !slices.Contains(f.SupportedFormats(), cfg.Format) {
		return nil, fmt.Errorf("%w: pcm cannot encode %s", ErrUnsupportedFormat, cfg.Format)
	}
	if cfg.Channels <= 0 || cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrOutOfRange, cfg.Channels, cfg.SampleRate)
	}

	return &pcmEncoder{cfg: cfg}, nil
}

type pcmEncoder struct {
	cfg      StreamConfig
	queue    []*Packet
	next     int64
	draining bool
}

func (e *pcmEncoder) FrameSize() int { return PCMFrameSize }

func (e *pcmEncoder) SendFrame(f *Frame) error {
	if f == nil {
		e.draining = true
		return nil
	}
	if e.draining {
		return fmt.Errorf("%w: frame after flush", ErrUnexpected)
	}
	if len(f.Planes) != e.cfg.Channels {
		return fmt.Errorf("%w: %d planes for %d channels", ErrOutOfRange, len(f.Planes), e.cfg.Channels)
	}

	bps := e.cfg.Format.BytesPerSample()
	for _, p := range f.Planes {
		if len(p) < f.Samples*bps {
			return fmt.Errorf("%w: short plane", ErrOutOfRange)
		}
	}

	data := make([]byte, f.Samples*bps*e.cfg.Channels)
	Interleave(data, f.Planes, bps, f.Samples)

	e.queue = append(e.queue, &Packet{PTS: e.next, Duration: int64(f.Samples), Data: data})
	e.next += int64(f.Samples)
	return nil
}

func (e *pcmEncoder) ReceivePacket() (*Packet, error) {
	if len(e.queue) > 0 {
		pkt := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		return pkt, nil
	}
	if e.draining {
		return nil, io.EOF
	}
	return nil, ErrAgain
}

func (e *pcmEncoder) Close() error {
	e.queue = nil
	return nil
}

func growFloats(buf [][]float32, channels, n int) [][]float32 {
	if len(buf) != channels {
		buf = make([][]float32, channels)
	}
	for c := range buf {
		if cap(buf[c]) < n {
			buf[c] = make([]float32, n)
		}
		buf[c] = buf[c][:n]
	}
	return buf
}
