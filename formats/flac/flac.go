// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// Codec is the name FLAC streams are registered under.
const Codec = "flac"

// flacReader is the part of flac.Stream the demuxer uses
type flacReader interface {
	ParseNext() (*frame.Frame, error)
	Seek(sampleNum uint64) (uint64, error)
}

// Container describes native FLAC files. Writing is not supported.
var Container = audio.Container{
	Name:        "flac",
	Extensions:  []string{"flac"},
	Probe:       Probe,
	OpenDemuxer: OpenDemuxer,
}

// Register adds the FLAC container and its decoder to r.
func Register(r *audio.Registry) {
	r.RegisterContainer(Container)
	r.RegisterDecoder(Codec, newDecoder)
}

// newDecoder reads packets laid out in the packed variant of the stream
// format.
func newDecoder(desc audio.StreamDescriptor) (audio.FrameDecoder, error) {
	return audio.NewPCMDecoder(desc.Format.Packed(), desc)
}

// Probe reports whether header starts with the FLAC stream marker.
func Probe(header []byte) bool {
	return bytes.HasPrefix(header, []byte("fLaC"))
}

// OpenDemuxer parses the stream info of r. Frames are decoded as they are
// read; packets hold interleaved 16-bit samples for inputs up to 16 bits and
// left-aligned 32-bit samples above that.
func OpenDemuxer(r io.ReadSeeker) (audio.Demuxer, error) {
	stream, err := flac.NewSeek(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	d, err := newDemuxer(stream, stream.Info)
	if err != nil {
		stream.Close()
		return nil, err
	}
	d.closer = stream
	return d, nil
}

type demuxer struct {
	dec    flacReader
	desc   audio.StreamDescriptor
	shift  uint
	total  int64
	pos    int64
	skip   int64 // samples to drop from the next frame after a seek
	closer io.Closer
}

func newDemuxer(dec flacReader, info *meta.StreamInfo) (*demuxer, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: missing STREAMINFO", audio.ErrStreamInfo)
	}

	bits := int(info.BitsPerSample)
	payload := audio.FormatS16
	var shift uint
	switch {
	case bits <= 0 || bits > 32:
		return nil, fmt.Errorf("%w: %d bits per sample", audio.ErrUnsupportedFormat, bits)
	case bits <= 16:
		shift = uint(16 - bits)
	default:
		payload = audio.FormatS32
		shift = uint(32 - bits)
	}

	rate, channels := int(info.SampleRate), int(info.NChannels)
	total := int64(-1)
	if info.NSamples > 0 {
		total = int64(info.NSamples)
	}

	return &demuxer{
		dec: dec,
		desc: audio.StreamDescriptor{
			Type:       audio.MediaAudio,
			Codec:      Codec,
			SampleRate: rate,
			Channels:   channels,
			Layout:     audio.DefaultLayout(channels),
			Format:     payload.Planar(),
			TimeBase:   audio.Rational{Num: 1, Den: int64(rate)},
		},
		shift: shift,
		total: total,
	}, nil
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.desc}
}

func (d *demuxer) Duration() int64 {
	if d.total < 0 || d.desc.SampleRate <= 0 {
		return audio.DurationUnknown
	}
	return utils.Rescale(d.total, 1_000_000, int64(d.desc.SampleRate), false)
}

func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	for {
		f, err := d.dec.ParseNext()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if len(f.Subframes) != d.desc.Channels {
			return nil, fmt.Errorf("%w: frame has %d channels, stream %d",
				audio.ErrOutOfRange, len(f.Subframes), d.desc.Channels)
		}

		n := len(f.Subframes[0].Samples)
		first := int(min(d.skip, int64(n)))
		d.skip -= int64(first)
		if first == n {
			continue
		}

		return d.packet(f, first, n), nil
	}
}

func (d *demuxer) packet(f *frame.Frame, first, n int) *audio.Packet {
	channels := d.desc.Channels
	bps := d.desc.Format.BytesPerSample()
	samples := n - first

	data := make([]byte, samples*channels*bps)
	for i := range samples {
		for c, sub := range f.Subframes {
			v := sub.Samples[first+i] << d.shift
			off := (i*channels + c) * bps
			if bps == 2 {
				binary.LittleEndian.PutUint16(data[off:], uint16(int16(v)))
			} else {
				binary.LittleEndian.PutUint32(data[off:], uint32(v))
			}
		}
	}

	pkt := &audio.Packet{PTS: d.pos, Duration: int64(samples), Data: data}
	d.pos += int64(samples)
	return pkt
}

// SeekTo lands on the frame holding the target sample and drops the samples
// before it from the next packet.
func (d *demuxer) SeekTo(us int64) error {
	target := utils.Rescale(us, int64(d.desc.SampleRate), 1_000_000, false)
	if d.total >= 0 && target > d.total {
		return fmt.Errorf("%w: seek to sample %d past end %d", audio.ErrOutOfRange, target, d.total)
	}

	start, err := d.dec.Seek(uint64(target))
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if int64(start) > target {
		return fmt.Errorf("%w: seek landed on sample %d after %d", audio.ErrUnexpected, start, target)
	}

	d.skip = target - int64(start)
	d.pos = target
	return nil
}

func (d *demuxer) Close() error {
	if d.closer != nil {
		c := d.closer
		d.closer = nil
		return c.Close()
	}
	return nil
}
