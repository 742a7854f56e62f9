// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts the integer sample buffers of the go-audio codecs
// to the demuxer and muxer interfaces.
package intpcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// PacketSamples is the number of samples per channel in every packet but
// the last.
const PacketSamples = 1024

// ErrUnsupportedBitDepth is returned for sample sizes other than 16, 24 and
// 32 bits.
var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// Reader is the part of the go-audio decoders the demuxer uses.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// PayloadFormat returns the packet sample format for a bit depth. 24-bit
// samples are widened to 32 bits.
func PayloadFormat(bitDepth int) (audio.SampleFormat, error) {
	switch bitDepth {
	case 16:
		return audio.FormatS16, nil
	case 24, 32:
		return audio.FormatS32, nil
	}
	return audio.FormatNone, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
}

// BitDepth returns the container bit depth for an encoder sample format.
func BitDepth(format audio.SampleFormat) (int, error) {
	switch format.Packed() {
	case audio.FormatS16:
		return 16, nil
	case audio.FormatS32:
		return 32, nil
	}
	return 0, fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, format)
}

// Demuxer serves the samples of a go-audio decoder as PCM packets of a
// single stream.
type Demuxer struct {
	r      Reader
	desc   audio.StreamDescriptor
	shift  uint
	total  int64
	pos    int64
	intBuf *goaudio.IntBuffer
	closer io.Closer
}

// NewDemuxer wraps r. total is the stream length in samples per channel, or
// a negative value when unknown.
func NewDemuxer(r Reader, sampleRate, channels, bitDepth int, total int64) (*Demuxer, error) {
	payload, err := PayloadFormat(bitDepth)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", audio.ErrStreamInfo, channels, sampleRate)
	}

	d := &Demuxer{
		r: r,
		desc: audio.StreamDescriptor{
			Index:      0,
			Type:       audio.MediaAudio,
			Codec:      audio.PCMCodecName(payload),
			SampleRate: sampleRate,
			Channels:   channels,
			Layout:     audio.DefaultLayout(channels),
			Format:     payload,
			TimeBase:   audio.Rational{Num: 1, Den: int64(sampleRate)},
		},
		total: total,
		intBuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           make([]int, PacketSamples*channels),
			SourceBitDepth: bitDepth,
		},
	}
	if bitDepth == 24 {
		d.shift = 8
	}
	return d, nil
}

func (d *Demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.desc}
}

func (d *Demuxer) Duration() int64 {
	if d.total < 0 {
		return audio.DurationUnknown
	}
	return utils.Rescale(d.total, 1_000_000, int64(d.desc.SampleRate), false)
}

// read fills the int buffer with up to samples samples per channel and
// returns how many whole sample instants it got.
func (d *Demuxer) read(samples int) (int, error) {
	channels := d.desc.Channels
	d.intBuf.Data = d.intBuf.Data[:samples*channels]

	n, err := d.r.PCMBuffer(d.intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w", err)
	}
	return n / channels, nil
}

func (d *Demuxer) ReadPacket() (*audio.Packet, error) {
	n, err := d.read(PacketSamples)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, io.EOF
	}

	bps := d.desc.Format.BytesPerSample()
	data := make([]byte, n*d.desc.Channels*bps)
	for i, v := range d.intBuf.Data[:n*d.desc.Channels] {
		if bps == 2 {
			binary.LittleEndian.PutUint16(data[i*2:], uint16(int16(v)))
		} else {
			binary.LittleEndian.PutUint32(data[i*4:], uint32(int32(v)<<d.shift))
		}
	}

	pkt := &audio.Packet{PTS: d.pos, Duration: int64(n), Data: data}
	d.pos += int64(n)
	return pkt, nil
}

// SeekTo skips forward by decoding and discarding samples. Seeking
// backwards is not supported.
func (d *Demuxer) SeekTo(us int64) error {
	target := utils.Rescale(us, int64(d.desc.SampleRate), 1_000_000, false)
	if target < d.pos {
		return fmt.Errorf("%w: cannot seek back from sample %d to %d", audio.ErrUnexpected, d.pos, target)
	}

	for d.pos < target {
		n, err := d.read(int(min(target-d.pos, PacketSamples)))
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: seek to sample %d past end %d", audio.ErrOutOfRange, target, d.pos)
		}
		d.pos += int64(n)
	}
	return nil
}

// SetCloser registers a resource released by Close.
func (d *Demuxer) SetCloser(c io.Closer) { d.closer = c }

func (d *Demuxer) Close() error {
	if d.closer != nil {
		c := d.closer
		d.closer = nil
		return c.Close()
	}
	return nil
}

// Writer is the part of the go-audio encoders the muxer uses.
type Writer interface {
	Write(buf *goaudio.IntBuffer) error
	Close() error
}

// Muxer writes PCM packets through a go-audio encoder.
type Muxer struct {
	w      Writer
	cfg    audio.StreamConfig
	intBuf *goaudio.IntBuffer
	closed bool
}

// NewMuxer checks that streams holds exactly one PCM stream and wraps the
// encoder newWriter returns for its bit depth.
func NewMuxer(streams []audio.StreamConfig, newWriter func(bitDepth int) Writer) (*Muxer, error) {
	if len(streams) != 1 {
		return nil, fmt.Errorf("%w: %d streams, container holds exactly one", audio.ErrOutOfRange, len(streams))
	}
	cfg := streams[0]
	if cfg.Codec != audio.PCMCodec {
		return nil, fmt.Errorf("%w: codec %q", audio.ErrUnsupportedFormat, cfg.Codec)
	}
	bitDepth, err := BitDepth(cfg.Format)
	if err != nil {
		return nil, err
	}

	return &Muxer{
		w:   newWriter(bitDepth),
		cfg: cfg,
		intBuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: cfg.Channels, SampleRate: cfg.SampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteHeader makes the encoder emit its header by writing an empty buffer.
func (m *Muxer) WriteHeader() error {
	m.intBuf.Data = m.intBuf.Data[:0]
	if err := m.w.Write(m.intBuf); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *Muxer) WritePacket(pkt *audio.Packet) error {
	bps := m.cfg.Format.BytesPerSample()
	n := len(pkt.Data) / bps

	if cap(m.intBuf.Data) < n {
		m.intBuf.Data = make([]int, n)
	}
	m.intBuf.Data = m.intBuf.Data[:n]
	for i := range m.intBuf.Data {
		if bps == 2 {
			m.intBuf.Data[i] = int(int16(binary.LittleEndian.Uint16(pkt.Data[i*2:])))
		} else {
			m.intBuf.Data[i] = int(int32(binary.LittleEndian.Uint32(pkt.Data[i*4:])))
		}
	}

	if err := m.w.Write(m.intBuf); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteTrailer finalizes the chunk sizes.
func (m *Muxer) WriteTrailer() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if err := m.w.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Close does not touch the underlying file, which belongs to the caller.
func (m *Muxer) Close() error { return nil }
