// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audxcode/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32 // interleaved
	offset       int
	chunk        int // values returned per Read at most, 0 for no limit
	unknownLen   bool
	returnErrors bool
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Length() int64 {
	if m.unknownLen {
		return 0
	}
	return int64(len(m.samples) / m.channels)
}

func (m *mockOggVorbisReader) SetPosition(pos int64) error {
	if pos < 0 || int(pos)*m.channels > len(m.samples) {
		return errors.New("invalid position")
	}
	m.offset = int(pos) * m.channels
	return nil
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := min(len(buf), len(m.samples)-m.offset)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	n -= n % m.channels
	copy(buf, m.samples[m.offset:m.offset+n])
	m.offset += n
	return n, nil
}

func ramp(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i%200)/100 - 1
	}
	return s
}

func floatAt(data []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
}

func TestOpenDemuxer_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{[]byte("This is not Ogg Vorbis data"), {}} {
		if _, err := OpenDemuxer(bytes.NewReader(data)); err == nil {
			t.Errorf("OpenDemuxer(%q) error = nil, want error", data)
		}
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	page := make([]byte, 64)
	copy(page, "OggS")
	copy(page[28:], "\x01vorbis")
	if !Probe(page) {
		t.Error("Probe(vorbis page) = false, want true")
	}

	copy(page[28:], "OpusHead")
	if Probe(page) {
		t.Error("Probe(opus page) = true, want false")
	}
	if Probe([]byte("OggS")) {
		t.Error("Probe(short) = true, want false")
	}
}

func TestDemuxer_Metadata(t *testing.T) {
	t.Parallel()

	d := newDemuxer(&mockOggVorbisReader{sampleRate: 44100, channels: 2, samples: make([]float32, 22050*2)})

	s := d.Streams()[0]
	if s.SampleRate != 44100 || s.Channels != 2 || s.Codec != Codec || s.Format != audio.FormatF32P {
		t.Errorf("stream = %+v", s)
	}
	if got := d.Duration(); got != 500_000 {
		t.Errorf("Duration() = %d, want 500000", got)
	}

	unknown := newDemuxer(&mockOggVorbisReader{sampleRate: 44100, channels: 2, unknownLen: true})
	if got := unknown.Duration(); got != audio.DurationUnknown {
		t.Errorf("Duration() = %d, want unknown", got)
	}
}

func TestDemuxer_ReadPacket(t *testing.T) {
	t.Parallel()

	samples := ramp(1500 * 2)
	d := newDemuxer(&mockOggVorbisReader{sampleRate: 8000, channels: 2, samples: samples, chunk: 300})

	idx := 0
	var durations []int64
	for {
		pkt, err := d.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPacket() error = %v", err)
		}
		durations = append(durations, pkt.Duration)
		for i := range len(pkt.Data) / 4 {
			if got := floatAt(pkt.Data, i); got != samples[idx] {
				t.Fatalf("value %d = %v, want %v", idx, got, samples[idx])
			}
			idx++
		}
	}

	if len(durations) != 2 || durations[0] != PacketSamples || durations[1] != 1500-PacketSamples {
		t.Errorf("packet durations = %v", durations)
	}
	if idx != len(samples) {
		t.Errorf("read %d values, want %d", idx, len(samples))
	}
}

func TestDemuxer_ReadError(t *testing.T) {
	t.Parallel()

	d := newDemuxer(&mockOggVorbisReader{sampleRate: 8000, channels: 1, returnErrors: true})
	if _, err := d.ReadPacket(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadPacket() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDemuxer_SeekTo(t *testing.T) {
	t.Parallel()

	samples := ramp(4000)
	d := newDemuxer(&mockOggVorbisReader{sampleRate: 8000, channels: 1, samples: samples})

	if err := d.SeekTo(250_000); err != nil {
		t.Fatalf("SeekTo() error = %v", err)
	}
	pkt, err := d.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if pkt.PTS != 2000 {
		t.Errorf("PTS = %d, want 2000", pkt.PTS)
	}
	if got := floatAt(pkt.Data, 0); got != samples[2000] {
		t.Errorf("first value = %v, want %v", got, samples[2000])
	}

	if err := d.SeekTo(1_000_000); !errors.Is(err, audio.ErrOutOfRange) {
		t.Errorf("SeekTo(past end) error = %v, want ErrOutOfRange", err)
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	r := audio.NewRegistry()
	Register(r)

	if c, ok := r.ContainerForPath("a.ogg"); !ok || c.Name != "ogg" {
		t.Errorf("ContainerForPath() = %q, %v", c.Name, ok)
	}
	if _, ok := r.Decoder(Codec); !ok {
		t.Error("no decoder registered for vorbis")
	}
}
