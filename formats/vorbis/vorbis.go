// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// Codec is the name Vorbis streams are registered under.
const Codec = "vorbis"

// PacketSamples is the number of samples per channel in every packet but
// the last.
const PacketSamples = 1024

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of values decoded, samples times channels.
	Read([]float32) (int, error)
	// Length is zero when unknown.
	Length() int64
	SetPosition(pos int64) error
}

// Container describes Ogg files carrying a Vorbis stream. Writing is not
// supported.
var Container = audio.Container{
	Name:        "ogg",
	Extensions:  []string{"ogg", "oga"},
	Probe:       Probe,
	OpenDemuxer: OpenDemuxer,
}

// Register adds the Ogg Vorbis container and its decoder to r.
func Register(r *audio.Registry) {
	r.RegisterContainer(Container)
	r.RegisterDecoder(Codec, audio.PCMDecoderFactory(audio.FormatF32))
}

// Probe reports whether header is the first Ogg page of a Vorbis stream.
func Probe(header []byte) bool {
	if !bytes.HasPrefix(header, []byte("OggS")) || len(header) < 35 {
		return false
	}
	return bytes.Equal(header[28:35], []byte("\x01vorbis"))
}

// OpenDemuxer starts decoding r. Packets carry interleaved float samples.
func OpenDemuxer(r io.ReadSeeker) (audio.Demuxer, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return newDemuxer(dec), nil
}

type demuxer struct {
	dec      oggReader
	desc     audio.StreamDescriptor
	pos      int64
	frameBuf []float32
}

func newDemuxer(dec oggReader) *demuxer {
	rate, channels := dec.SampleRate(), dec.Channels()
	return &demuxer{
		dec: dec,
		desc: audio.StreamDescriptor{
			Type:       audio.MediaAudio,
			Codec:      Codec,
			SampleRate: rate,
			Channels:   channels,
			Layout:     audio.DefaultLayout(channels),
			Format:     audio.FormatF32P,
			TimeBase:   audio.Rational{Num: 1, Den: int64(rate)},
		},
		frameBuf: make([]float32, PacketSamples*channels),
	}
}

func (d *demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.desc}
}

func (d *demuxer) Duration() int64 {
	total := d.dec.Length()
	if total <= 0 || d.desc.SampleRate <= 0 {
		return audio.DurationUnknown
	}
	return utils.Rescale(total, 1_000_000, int64(d.desc.SampleRate), false)
}

func (d *demuxer) ReadPacket() (*audio.Packet, error) {
	channels := d.desc.Channels
	if channels <= 0 {
		return nil, io.EOF
	}

	// The reader may return less than asked for, fill the packet
	values := 0
	for values < len(d.frameBuf) {
		n, err := d.dec.Read(d.frameBuf[values:])
		values += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	samples := values / channels
	if samples == 0 {
		return nil, io.EOF
	}

	data := make([]byte, samples*channels*4)
	if err := audio.EncodeSamples(audio.FormatF32, 1, [][]float32{d.frameBuf[:samples*channels]}, samples*channels, [][]byte{data}); err != nil {
		return nil, err
	}

	pkt := &audio.Packet{PTS: d.pos, Duration: int64(samples), Data: data}
	d.pos += int64(samples)
	return pkt, nil
}

func (d *demuxer) SeekTo(us int64) error {
	target := utils.Rescale(us, int64(d.desc.SampleRate), 1_000_000, false)
	if total := d.dec.Length(); total > 0 && target > total {
		return fmt.Errorf("%w: seek to sample %d past end %d", audio.ErrOutOfRange, target, total)
	}

	if err := d.dec.SetPosition(target); err != nil {
		return fmt.Errorf("%w", err)
	}
	d.pos = target
	return nil
}

func (d *demuxer) Close() error { return nil }
