// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audxcode/audio"
)

// FakeCodec is the codec name fake streams use. Its packets carry
// interleaved 16-bit PCM.
const FakeCodec = "fake"

// Demuxer replays a fixed list of packets.
type Demuxer struct {
	StreamList []audio.StreamDescriptor
	Packets    []*audio.Packet
	DurationUs int64

	// ReadErr, when set, is returned once the packets run out instead of
	// io.EOF.
	ReadErr error
	SeekErr error

	Seeks  []int64
	Closed bool
	pos    int
}

func (d *Demuxer) Streams() []audio.StreamDescriptor { return d.StreamList }
func (d *Demuxer) Duration() int64                   { return d.DurationUs }

func (d *Demuxer) ReadPacket() (*audio.Packet, error) {
	if d.pos >= len(d.Packets) {
		if d.ReadErr != nil {
			return nil, d.ReadErr
		}
		return nil, io.EOF
	}
	pkt := d.Packets[d.pos]
	d.pos++
	return pkt, nil
}

func (d *Demuxer) SeekTo(us int64) error {
	d.Seeks = append(d.Seeks, us)
	return d.SeekErr
}

func (d *Demuxer) Close() error {
	d.Closed = true
	return nil
}

// Container returns a container that serves d for every file with one of
// the given extensions.
func (d *Demuxer) Container(name string, extensions ...string) audio.Container {
	return audio.Container{
		Name:       name,
		Extensions: extensions,
		OpenDemuxer: func(io.ReadSeeker) (audio.Demuxer, error) {
			return d, nil
		},
	}
}

// AudioStream describes an s16 audio stream with a 1/sampleRate time base.
func AudioStream(index, sampleRate, channels int) audio.StreamDescriptor {
	return audio.StreamDescriptor{
		Index:      index,
		Type:       audio.MediaAudio,
		Codec:      FakeCodec,
		SampleRate: sampleRate,
		Channels:   channels,
		Format:     audio.FormatS16,
		TimeBase:   audio.Rational{Num: 1, Den: int64(sampleRate)},
	}
}

// Packets cuts interleaved samples into packets of size samples per
// channel, timestamped in samples.
func Packets(stream, channels, size int, samples []int16) []*audio.Packet {
	var out []*audio.Packet
	for off := 0; off < len(samples); off += size * channels {
		end := min(off+size*channels, len(samples))
		data := make([]byte, (end-off)*2)
		for i, s := range samples[off:end] {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
		}
		out = append(out, &audio.Packet{
			StreamIndex: stream,
			PTS:         int64(off / channels),
			Duration:    int64((end - off) / channels),
			Data:        data,
		})
	}
	return out
}

// RegisterFakeCodec makes FakeCodec streams decodable.
func RegisterFakeCodec(r *audio.Registry) {
	r.RegisterDecoder(FakeCodec, audio.PCMDecoderFactory(audio.FormatS16))
}

// RegisterLaggingCodec makes FakeCodec streams decodable by LaggingDecoder.
func RegisterLaggingCodec(r *audio.Registry) {
	r.RegisterDecoder(FakeCodec, LaggingDecoder)
}

// LaggingDecoder decodes FakeCodec packets but withholds every frame on the
// first ReceiveFrame call after a packet, so the next packet is refused
// with audio.ErrAgain until the frame is taken.
func LaggingDecoder(desc audio.StreamDescriptor) (audio.FrameDecoder, error) {
	dec, err := audio.NewPCMDecoder(audio.FormatS16, desc)
	if err != nil {
		return nil, err
	}
	return &laggingDecoder{FrameDecoder: dec}, nil
}

type laggingDecoder struct {
	audio.FrameDecoder
	hold bool
}

func (d *laggingDecoder) SendPacket(pkt *audio.Packet) error {
	if err := d.FrameDecoder.SendPacket(pkt); err != nil {
		return err
	}
	d.hold = pkt != nil
	return nil
}

func (d *laggingDecoder) ReceiveFrame() (*audio.Frame, error) {
	if d.hold {
		d.hold = false
		return nil, audio.ErrAgain
	}
	return d.FrameDecoder.ReceiveFrame()
}

// RefusingDecoder is a decoder factory whose decoders refuse every packet
// with audio.ErrAgain and never yield a frame.
func RefusingDecoder(audio.StreamDescriptor) (audio.FrameDecoder, error) {
	return refusingDecoder{}, nil
}

type refusingDecoder struct{}

func (refusingDecoder) SendPacket(*audio.Packet) error       { return audio.ErrAgain }
func (refusingDecoder) ReceiveFrame() (*audio.Frame, error) { return nil, audio.ErrAgain }
func (refusingDecoder) Close() error                        { return nil }

// ErrInjected is returned by the failing fakes.
var ErrInjected = errors.New("injected failure")

// FailingDecoder is a decoder factory that always fails.
func FailingDecoder(audio.StreamDescriptor) (audio.FrameDecoder, error) {
	return nil, ErrInjected
}

// FailingEncoderFactory opens PCM encoders that fail on frame number
// FailAt (counting from 1).
type FailingEncoderFactory struct {
	audio.PCMEncoderFactory
	FailAt int
}

func (f FailingEncoderFactory) NewEncoder(cfg audio.StreamConfig) (audio.FrameEncoder, error) {
	enc, err := f.PCMEncoderFactory.NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	return &failingEncoder{FrameEncoder: enc, failAt: f.FailAt}, nil
}

type failingEncoder struct {
	audio.FrameEncoder
	failAt int
	frames int
}

func (e *failingEncoder) SendFrame(f *audio.Frame) error {
	if f != nil {
		e.frames++
		if e.frames == e.failAt {
			return fmt.Errorf("frame %d: %w", e.frames, ErrInjected)
		}
	}
	return e.FrameEncoder.SendFrame(f)
}

// AnySizeEncoderFactory opens PCM encoders that report no fixed frame
// size and record the sample count of every frame they get.
type AnySizeEncoderFactory struct {
	audio.PCMEncoderFactory
	Frames []int
}

func (f *AnySizeEncoderFactory) NewEncoder(cfg audio.StreamConfig) (audio.FrameEncoder, error) {
	enc, err := f.PCMEncoderFactory.NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	return &anySizeEncoder{FrameEncoder: enc, factory: f}, nil
}

type anySizeEncoder struct {
	audio.FrameEncoder
	factory *AnySizeEncoderFactory
}

func (e *anySizeEncoder) FrameSize() int { return 0 }

func (e *anySizeEncoder) SendFrame(f *audio.Frame) error {
	if f != nil {
		e.factory.Frames = append(e.factory.Frames, f.Samples)
	}
	return e.FrameEncoder.SendFrame(f)
}

// RestrictedEncoderFactory wraps the PCM encoder with fixed capability
// lists, for negotiation tests.
type RestrictedEncoderFactory struct {
	audio.PCMEncoderFactory
	Rates   []int
	Layouts []audio.ChannelLayout
	Formats []audio.SampleFormat
	Opened  []audio.StreamConfig
}

func (f *RestrictedEncoderFactory) SupportedSampleRates() []int { return f.Rates }
func (f *RestrictedEncoderFactory) SupportedLayouts() []audio.ChannelLayout {
	return f.Layouts
}

func (f *RestrictedEncoderFactory) SupportedFormats() []audio.SampleFormat {
	if f.Formats == nil {
		return f.PCMEncoderFactory.SupportedFormats()
	}
	return f.Formats
}

func (f *RestrictedEncoderFactory) NewEncoder(cfg audio.StreamConfig) (audio.FrameEncoder, error) {
	f.Opened = append(f.Opened, cfg)
	return f.PCMEncoderFactory.NewEncoder(cfg)
}
