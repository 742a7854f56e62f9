// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// Codec is the name MP3 streams are registered under.
const Codec = "mp3"

// PacketSamples is the number of samples per channel in one packet, the
// size of an MPEG-1 Layer III frame.
const PacketSamples = 1152

// go-mp3 always decodes to 16-bit stereo
const (
	channels    = 2
	bytesPerPCM = 2 * channels
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

// Container describes MP3 elementary streams. Writing is not supported.
var Container = audio.Container{
	Name:        "mp3",
	Extensions:  []string{"mp3"},
	Probe:       Probe,
	OpenDemuxer: OpenDemuxer,
}

// Register adds the MP3 container and its decoder to r.
func Register(r *audio.Registry) {
	r.RegisterContainer(Container)
	r.RegisterDecoder(Codec, audio.PCMDecoderFactory(audio.FormatS16))
}

// Probe reports whether header starts with an ID3v2 tag or a Layer III frame
// sync.
func Probe(header []byte) bool {
	if bytes.HasPrefix(header, []byte("ID3")) {
		return true
	}
	if len(header) < 2 {
		return false
	}
	return header[0] == 0xff && header[1]&0xe0 == 0xe0 && (header[1]>>1)&0x03 == 0x01
}

// OpenDemuxer starts decoding r. Packets carry interleaved 16-bit stereo
// samples; the decoder registered for Codec splits them into planes.
func OpenDemuxer(r io.ReadSeeker) (audio.Demuxer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return newDemuxer(dec), nil
}

type demuxer struct {
	dec   mp3Reader
	desc  audio.StreamDescriptor
	total int64
	pos   int64
	buf   []byte
}

func newDemuxer(dec mp3Reader) *demuxer {
	rate := dec.SampleRate()
	total := int64(-1)
	if l := dec.Length(); l >= 0 {
		total = l / bytesPerPCM
	}

	return &demuxer{
		dec: dec,
		desc: audio.StreamDescriptor{
			Type:       audio.MediaAudio,
			Codec:      Codec,
			SampleRate: rate,
			Channels:   channels,
			Layout:     audio.LayoutStereo,
			Format:     audio.FormatS16P,
			TimeBase:   audio.Rational{Num: 1, Den: int64(rate)},
		},
		total: total,
		buf:   make([]byte, PacketSamples*bytesPerPCM),
	}
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
	n, err := io.ReadFull(d.dec, d.buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w", err)
	}

	n -= n % bytesPerPCM
	if n == 0 {
		return nil, io.EOF
	}

	samples := int64(n / bytesPerPCM)
	pkt := &audio.Packet{
		PTS:      d.pos,
		Duration: samples,
		Data:     append([]byte(nil), d.buf[:n]...),
	}
	d.pos += samples
	return pkt, nil
}

// SeekTo moves to the sample nearest below us.
func (d *demuxer) SeekTo(us int64) error {
	target := utils.Rescale(us, int64(d.desc.SampleRate), 1_000_000, false)
	if d.total >= 0 && target > d.total {
		return fmt.Errorf("%w: seek to sample %d past end %d", audio.ErrOutOfRange, target, d.total)
	}

	if _, err := d.dec.Seek(target*bytesPerPCM, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	d.pos = target
	return nil
}

func (d *demuxer) Close() error { return nil }
