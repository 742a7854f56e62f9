// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"
)

// runResampler pushes n samples of wave through r in chunks of the given
// sizes (cycled), flushes, and returns the decoded output.
func runResampler(t *testing.T, r *Resampler, n int, wave waveform, chunks []int) [][]float32 {
	t.Helper()

	cfg := r.Config()
	input := newPlanes(cfg.InFormat, cfg.InChannels, n, wave)

	var produced [][]byte
	for c := 0; c < cfg.OutFormat.Planes(cfg.OutChannels); c++ {
		produced = append(produced, nil)
	}
	collect := func(out [][]byte, samples int) {
		size := samples * cfg.OutFormat.RowStride(cfg.OutChannels)
		for p := range out {
			produced[p] = append(produced[p], out[p][:size]...)
		}
	}

	off := 0
	for i := 0; off < n; i++ {
		size := min(chunks[i%len(chunks)], n-off)
		out := AllocPlanes(cfg.OutFormat, cfg.OutChannels, r.MaxOutput(size))

		got, err := r.Convert(offsetPlanes(cfg.InFormat, cfg.InChannels, input, off), size, out)
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if got > r.MaxOutput(size) {
			t.Fatalf("Convert(%d) produced %d, above bound %d", size, got, r.MaxOutput(size))
		}
		collect(out, got)
		off += size
	}

	tail := AllocPlanes(cfg.OutFormat, cfg.OutChannels, r.Pending())
	got, err := r.Flush(tail)
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	collect(tail, got)
	if r.Pending() != 0 {
		t.Errorf("Pending() after Flush = %d, want 0", r.Pending())
	}

	total := len(produced[0]) / cfg.OutFormat.RowStride(cfg.OutChannels)
	return floatPlanes(cfg.OutFormat, cfg.OutChannels, total, produced)
}

func TestResampler_OutputLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, out int
	}{
		{44100, 48000},
		{48000, 44100},
		{8000, 48000},
		{44100, 8000},
		{32000, 32000},
		{22050, 44100},
		{48000, 16000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d", tt.in, tt.out), func(t *testing.T) {
			t.Parallel()

			r, err := NewResampler(ResamplerConfig{
				InRate: tt.in, InChannels: 2, InFormat: FormatS16,
				OutRate: tt.out, OutChannels: 2, OutFormat: FormatS16P,
			})
			if err != nil {
				t.Fatalf("NewResampler() error = %v", err)
			}

			const n = 10007
			got := runResampler(t, r, n, sineWave(tt.in, 440), []int{1152, 37, 4096, 1, 999})
			want := int(math.Ceil(float64(n) * float64(tt.out) / float64(tt.in)))
			if len(got[0]) != want {
				t.Errorf("%d -> %d Hz: produced %d samples, want %d", tt.in, tt.out, len(got[0]), want)
			}
		})
	}
}

func TestResampler_SameRateIsExact(t *testing.T) {
	t.Parallel()

	r, err := NewResampler(ResamplerConfig{
		InRate: 32000, InChannels: 2, InFormat: FormatS16,
		OutRate: 32000, OutChannels: 2, OutFormat: FormatS16P,
	})
	if err != nil {
		t.Fatalf("NewResampler() error = %v", err)
	}

	const n = 500
	input := newPlanes(FormatS16, 2, n, sineWave(32000, 1000))
	out := AllocPlanes(FormatS16P, 2, r.MaxOutput(n))

	got, err := r.Convert(input, n, out)
	if err != nil || got != n {
		t.Fatalf("Convert() = %d, %v; want %d, nil", got, err, n)
	}

	planar := AllocPlanes(FormatS16P, 2, n)
	Deinterleave(planar, input[0], 2, n)
	for c := range planar {
		if !bytes.Equal(out[c], planar[c]) {
			t.Errorf("channel %d differs from the input", c)
		}
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", r.Pending())
	}
}

func TestResampler_ConstantSignal(t *testing.T) {
	t.Parallel()

	for _, rates := range [][2]int{{8000, 44100}, {44100, 8000}} {
		r, err := NewResampler(ResamplerConfig{
			InRate: rates[0], InChannels: 1, InFormat: FormatF32,
			OutRate: rates[1], OutChannels: 1, OutFormat: FormatF32P,
		})
		if err != nil {
			t.Fatalf("NewResampler() error = %v", err)
		}

		got := runResampler(t, r, 3000, constantWave(0.5), []int{512})
		for i, v := range got[0] {
			if math.Abs(float64(v-0.5)) > 1e-5 {
				t.Fatalf("%v: sample %d = %v, want 0.5", rates, i, v)
			}
		}
	}
}

func TestResampler_UpsampledSineTracksSource(t *testing.T) {
	t.Parallel()

	r, err := NewResampler(ResamplerConfig{
		InRate: 8000, InChannels: 1, InFormat: FormatF32,
		OutRate: 48000, OutChannels: 1, OutFormat: FormatF32,
	})
	if err != nil {
		t.Fatalf("NewResampler() error = %v", err)
	}

	got := runResampler(t, r, 8000, sineWave(8000, 440), []int{160})
	want := sineWave(48000, 440)
	for i := 20; i < len(got[0])-20; i++ {
		if d := math.Abs(float64(got[0][i] - want(i, 0))); d > 0.01 {
			t.Fatalf("sample %d = %v, want %v", i, got[0][i], want(i, 0))
		}
	}
}

func TestResampler_Remix(t *testing.T) {
	t.Parallel()

	r, err := NewResampler(ResamplerConfig{
		InRate: 16000, InChannels: 2, InFormat: FormatS16,
		OutRate: 8000, OutChannels: 1, OutFormat: FormatS16P,
	})
	if err != nil {
		t.Fatalf("NewResampler() error = %v", err)
	}

	stereo := func(_ int, channel int) float32 {
		if channel == 0 {
			return 0.2
		}
		return 0.4
	}
	got := runResampler(t, r, 1600, stereo, []int{320})
	if len(got) != 1 || len(got[0]) != 800 {
		t.Fatalf("got %d channels of %d samples, want 1 of 800", len(got), len(got[0]))
	}
	for i, v := range got[0] {
		if math.Abs(float64(v-0.3)) > 1.0/16384 {
			t.Fatalf("sample %d = %v, want 0.3", i, v)
		}
	}
}

func TestResampler_ShortOutput(t *testing.T) {
	t.Parallel()

	r, err := NewResampler(ResamplerConfig{
		InRate: 8000, InChannels: 1, InFormat: FormatS16,
		OutRate: 16000, OutChannels: 1, OutFormat: FormatS16P,
	})
	if err != nil {
		t.Fatalf("NewResampler() error = %v", err)
	}

	input := newPlanes(FormatS16, 1, 100, constantWave(0.1))
	_, err = r.Convert(input, 100, AllocPlanes(FormatS16P, 1, 10))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Convert() into a short plane = %v, want ErrOutOfRange", err)
	}
}

func TestNewResampler_Invalid(t *testing.T) {
	t.Parallel()

	valid := ResamplerConfig{
		InRate: 8000, InChannels: 1, InFormat: FormatS16,
		OutRate: 8000, OutChannels: 1, OutFormat: FormatS16P,
	}

	tests := []struct {
		name   string
		modify func(*ResamplerConfig)
		want   error
	}{
		{"zero in rate", func(c *ResamplerConfig) { c.InRate = 0 }, ErrOutOfRange},
		{"negative out rate", func(c *ResamplerConfig) { c.OutRate = -1 }, ErrOutOfRange},
		{"no channels", func(c *ResamplerConfig) { c.OutChannels = 0 }, ErrOutOfRange},
		{"no in format", func(c *ResamplerConfig) { c.InFormat = FormatNone }, ErrUnsupportedFormat},
		{"no out format", func(c *ResamplerConfig) { c.OutFormat = FormatNone }, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.modify(&cfg)
			if _, err := NewResampler(cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewResampler() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	r, _ := NewResampler(ResamplerConfig{
		InRate: 44100, InChannels: 2, InFormat: FormatS16,
		OutRate: 8000, OutChannels: 1, OutFormat: FormatS16P,
	})
	input := newPlanes(FormatS16, 2, 4096, sineWave(44100, 440))
	out := AllocPlanes(FormatS16P, 1, r.MaxOutput(4096))

	b.ReportAllocs()
	for b.Loop() {
		if _, err := r.Convert(input, 4096, out); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResampler_Upsample(b *testing.B) {
	r, _ := NewResampler(ResamplerConfig{
		InRate: 8000, InChannels: 1, InFormat: FormatS16,
		OutRate: 48000, OutChannels: 1, OutFormat: FormatS16P,
	})
	input := newPlanes(FormatS16, 1, 1024, sineWave(8000, 440))
	out := AllocPlanes(FormatS16P, 1, r.MaxOutput(1024))

	b.ReportAllocs()
	for b.Loop() {
		if _, err := r.Convert(input, 1024, out); err != nil {
			b.Fatal(err)
		}
	}
}
