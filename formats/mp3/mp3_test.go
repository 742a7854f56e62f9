// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audxcode/audio"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate   int
	samples      []int16 // PCM samples (16-bit, interleaved stereo)
	offset       int
	returnErrors bool
}

func (m *mockMP3Reader) SampleRate() int {
	return m.sampleRate
}

func (m *mockMP3Reader) Length() int64 {
	return int64(len(m.samples) * 2)
}

func (m *mockMP3Reader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart || offset < 0 || offset/2 > int64(len(m.samples)) {
		return 0, errors.New("invalid seek")
	}
	m.offset = int(offset / 2)
	return offset, nil
}

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.returnErrors {
		return 0, io.ErrClosedPipe
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	// Read complete samples only, and at most 500 per call
	samplesToRead := min(len(buf)/2, len(m.samples)-m.offset, 500)
	for i := range samplesToRead {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(m.samples[m.offset+i]))
	}
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead * 2, io.EOF
	}
	return samplesToRead * 2, nil
}

func counting(n int) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = int16(i % 30000)
	}
	return s
}

func TestOpenDemuxer_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{[]byte("This is not MP3 data"), {}} {
		if _, err := OpenDemuxer(bytes.NewReader(data)); err == nil {
			t.Errorf("OpenDemuxer(%q) error = nil, want error", data)
		}
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"id3", []byte("ID3\x04\x00"), true},
		{"layer 3 sync", []byte{0xff, 0xfb, 0x90, 0x00}, true},
		{"layer 2 sync", []byte{0xff, 0xfd, 0x90, 0x00}, false},
		{"riff", []byte("RIFF"), false},
		{"short", []byte{0xff}, false},
	}

	for _, tt := range tests {
		if got := Probe(tt.header); got != tt.want {
			t.Errorf("Probe(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDemuxer_Metadata(t *testing.T) {
	t.Parallel()

	d := newDemuxer(&mockMP3Reader{sampleRate: 44100, samples: make([]int16, 44100*2)})

	s := d.Streams()[0]
	if s.SampleRate != 44100 || s.Channels != 2 || s.Codec != Codec || s.Format != audio.FormatS16P {
		t.Errorf("stream = %+v", s)
	}
	if got := d.Duration(); got != 1_000_000 {
		t.Errorf("Duration() = %d, want 1000000", got)
	}
}

func TestDemuxer_ReadPacket(t *testing.T) {
	t.Parallel()

	samples := counting(3000 * 2)
	d := newDemuxer(&mockMP3Reader{sampleRate: 8000, samples: samples})

	var sizes []int64
	idx := 0
	for {
		pkt, err := d.ReadPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadPacket() error = %v", err)
		}
		if pkt.PTS != int64(idx/2) {
			t.Errorf("PTS = %d, want %d", pkt.PTS, idx/2)
		}
		sizes = append(sizes, pkt.Duration)
		for i := 0; i < len(pkt.Data); i += 2 {
			if got := int16(binary.LittleEndian.Uint16(pkt.Data[i:])); got != samples[idx] {
				t.Fatalf("sample %d = %d, want %d", idx, got, samples[idx])
			}
			idx++
		}
	}

	want := []int64{PacketSamples, PacketSamples, 3000 - 2*PacketSamples}
	if len(sizes) != len(want) {
		t.Fatalf("packet sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Errorf("packet sizes = %v, want %v", sizes, want)
		}
	}
}

func TestDemuxer_ReadError(t *testing.T) {
	t.Parallel()

	d := newDemuxer(&mockMP3Reader{sampleRate: 8000, returnErrors: true})
	if _, err := d.ReadPacket(); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("ReadPacket() error = %v, want io.ErrClosedPipe", err)
	}
}

func TestDemuxer_SeekTo(t *testing.T) {
	t.Parallel()

	samples := counting(8000 * 2)
	d := newDemuxer(&mockMP3Reader{sampleRate: 8000, samples: samples})

	if err := d.SeekTo(500_000); err != nil {
		t.Fatalf("SeekTo() error = %v", err)
	}
	pkt, err := d.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket() error = %v", err)
	}
	if pkt.PTS != 4000 {
		t.Errorf("PTS = %d, want 4000", pkt.PTS)
	}
	if got := int16(binary.LittleEndian.Uint16(pkt.Data)); got != samples[8000] {
		t.Errorf("first sample = %d, want %d", got, samples[8000])
	}

	if err := d.SeekTo(2_000_000); !errors.Is(err, audio.ErrOutOfRange) {
		t.Errorf("SeekTo(past end) error = %v, want ErrOutOfRange", err)
	}
}

func TestRegister_DecodesPlanar(t *testing.T) {
	t.Parallel()

	r := audio.NewRegistry()
	Register(r)

	if c, ok := r.ContainerForPath("song.MP3"); !ok || c.Name != "mp3" {
		t.Fatalf("ContainerForPath() = %q, %v", c.Name, ok)
	}

	factory, ok := r.Decoder(Codec)
	if !ok {
		t.Fatal("no decoder registered for mp3")
	}

	d := newDemuxer(&mockMP3Reader{sampleRate: 8000, samples: []int16{1, -1, 2, -2}})
	dec, err := factory(d.Streams()[0])
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	defer dec.Close()

	pkt, err := d.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if err := dec.SendPacket(pkt); err != nil {
		t.Fatalf("SendPacket() error = %v", err)
	}
	f, err := dec.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame() error = %v", err)
	}

	if f.Samples != 2 || len(f.Planes) != 2 {
		t.Fatalf("frame = %d samples in %d planes", f.Samples, len(f.Planes))
	}
	left := []int16{int16(binary.LittleEndian.Uint16(f.Planes[0])), int16(binary.LittleEndian.Uint16(f.Planes[0][2:]))}
	right := []int16{int16(binary.LittleEndian.Uint16(f.Planes[1])), int16(binary.LittleEndian.Uint16(f.Planes[1][2:]))}
	if left[0] != 1 || left[1] != 2 || right[0] != -1 || right[1] != -2 {
		t.Errorf("planes = %v %v, want [1 2] [-1 -2]", left, right)
	}
}
