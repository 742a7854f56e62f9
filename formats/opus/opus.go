// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/internal/ogg"
	"github.com/ik5/audxcode/utils"
)

// Codec is the name the Opus encoder is registered under.
const Codec = "opus"

// GranuleRate is the clock of Ogg Opus granule positions.
const GranuleRate = 48000

// PreSkip is the number of 48 kHz samples a player drops from the start of
// the stream, the encoder lookahead.
const PreSkip = 312

// ErrUnavailable is returned by the encoder factory when the module was
// built without libopus.
var ErrUnavailable = errors.New("opus encoder not available, build with -tags opus")

// SupportedSampleRates are the rates libopus encodes natively.
var SupportedSampleRates = []int{8000, 12000, 16000, 24000, 48000}

// Container describes Ogg Opus files. Reading is not supported.
var Container = audio.Container{
	Name:         "opus",
	Extensions:   []string{"opus"},
	Probe:        Probe,
	NewMuxer:     NewMuxer,
	DefaultCodec: Codec,
}

// Register adds the Ogg Opus container and the Opus encoder to r.
func Register(r *audio.Registry) {
	r.RegisterContainer(Container)
	r.RegisterEncoder(Codec, EncoderFactory{})
}

// Probe reports whether header is the first Ogg page of an Opus stream.
func Probe(header []byte) bool {
	if !bytes.HasPrefix(header, []byte("OggS")) || len(header) < 36 {
		return false
	}
	return bytes.Equal(header[28:36], []byte("OpusHead"))
}

// Muxer writes Opus packets into an Ogg stream. Pages come from pion's
// oggwriter; an ogg.Rewriter sets the pre-skip, rebases the granule
// positions and flags the last page end of stream.
type Muxer struct {
	pages   *ogg.Rewriter
	writer  *oggwriter.OggWriter
	cfg     audio.StreamConfig
	samples int64
	offset  int64
	started bool
	done    bool
}

// NewMuxer accepts exactly one Opus stream.
func NewMuxer(w io.WriteSeeker, streams []audio.StreamConfig) (audio.Muxer, error) {
	if len(streams) != 1 {
		return nil, fmt.Errorf("%w: %d streams, container holds exactly one", audio.ErrOutOfRange, len(streams))
	}
	cfg := streams[0]
	if cfg.Codec != Codec {
		return nil, fmt.Errorf("%w: codec %q", audio.ErrUnsupportedFormat, cfg.Codec)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 || cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", audio.ErrOutOfRange, cfg.Channels, cfg.SampleRate)
	}

	m := &Muxer{cfg: cfg}
	m.pages = ogg.NewRewriter(w, m.fix)
	return m, nil
}

// fix runs on every page oggwriter emits. Page 0 is OpusHead and page 1
// OpusTags; oggwriter numbers audio granules from 1.
func (m *Muxer) fix(p ogg.Page) {
	switch seq := p.Sequence(); {
	case seq == 0:
		if body := p.Body(); bytes.HasPrefix(body, []byte("OpusHead")) && len(body) >= 12 {
			binary.LittleEndian.PutUint16(body[10:], PreSkip)
		}
	case seq >= 2:
		p.SetGranule(p.Granule() + m.offset)
	}
}

func (m *Muxer) WriteHeader() error {
	w, err := oggwriter.NewWith(m.pages, uint32(m.cfg.SampleRate), uint16(m.cfg.Channels))
	if err != nil {
		return fmt.Errorf("%w: ogg header: %w", audio.ErrUnexpected, err)
	}
	m.writer = w
	return nil
}

// WritePacket writes pkt on its own page. The RTP timestamp carries the
// granule position after the packet.
func (m *Muxer) WritePacket(pkt *audio.Packet) error {
	if m.done || m.writer == nil {
		return fmt.Errorf("%w: muxer not writable", audio.ErrUnexpected)
	}

	m.samples += pkt.Duration
	granule := PreSkip + utils.Rescale(m.samples, GranuleRate, int64(m.cfg.SampleRate), false)
	if len(pkt.Data) == 0 {
		return nil
	}
	if !m.started {
		m.offset = granule - 1
		m.started = true
	}

	err := m.writer.WriteRTP(&rtp.Packet{
		Header:  rtp.Header{Timestamp: uint32(granule)},
		Payload: pkt.Data,
	})
	if err != nil {
		return fmt.Errorf("%w: ogg page: %w", audio.ErrUnexpected, err)
	}
	return nil
}

func (m *Muxer) WriteTrailer() error {
	if m.done {
		return nil
	}
	m.done = true
	return m.pages.Finish()
}

// Close does not touch the underlying file, which belongs to the caller.
func (m *Muxer) Close() error {
	if m.writer == nil {
		return nil
	}
	return m.writer.Close()
}
