// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"testing"
)

func mixOnce(in, out int, src [][]float32) [][]float32 {
	n := len(src[0])
	dst := make([][]float32, out)
	for c := range dst {
		dst[c] = make([]float32, n)
	}
	NewChannelMixer(in, out).Mix(dst, src, n)
	return dst
}

func TestChannelMixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		out  int
		src  [][]float32
		want [][]float32
	}{
		{
			name: "passthrough",
			in:   2, out: 2,
			src:  [][]float32{{0.1, 0.2}, {0.3, 0.4}},
			want: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		},
		{
			name: "stereo to mono",
			in:   2, out: 1,
			src:  [][]float32{{0.4, -1}, {0.6, 1}},
			want: [][]float32{{0.5, 0}},
		},
		{
			name: "quad to mono",
			in:   4, out: 1,
			src:  [][]float32{{0.1}, {0.2}, {0.3}, {0.4}},
			want: [][]float32{{0.25}},
		},
		{
			name: "surround to mono",
			in:   3, out: 1,
			src:  [][]float32{{0.3}, {0.6}, {0.9}},
			want: [][]float32{{0.6}},
		},
		{
			name: "mono to stereo",
			in:   1, out: 2,
			src:  [][]float32{{0.7, 0.1}},
			want: [][]float32{{0.7, 0.1}, {0.7, 0.1}},
		},
		{
			name: "stereo to quad",
			in:   2, out: 4,
			src:  [][]float32{{0.1}, {0.2}},
			want: [][]float32{{0.1}, {0.2}, {0.1}, {0.2}},
		},
		{
			name: "5.0 to stereo",
			in:   5, out: 2,
			src:  [][]float32{{0.1}, {0.2}, {0.3}, {0.4}, {0.5}},
			want: [][]float32{{0.3}, {0.3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mixOnce(tt.in, tt.out, tt.src)
			for c := range tt.want {
				for i := range tt.want[c] {
					if math.Abs(float64(got[c][i]-tt.want[c][i])) > 1e-6 {
						t.Errorf("channel %d sample %d = %v, want %v", c, i, got[c][i], tt.want[c][i])
					}
				}
			}
		})
	}
}

func TestChannelMixer_Empty(t *testing.T) {
	t.Parallel()

	m := NewChannelMixer(2, 1)
	m.Mix(nil, nil, 0)

	if m.InChannels() != 2 || m.OutChannels() != 1 {
		t.Errorf("channels = %d -> %d, want 2 -> 1", m.InChannels(), m.OutChannels())
	}
}

func BenchmarkChannelMixer_StereoToMono(b *testing.B) {
	const n = 4096
	src := [][]float32{make([]float32, n), make([]float32, n)}
	dst := [][]float32{make([]float32, n)}
	m := NewChannelMixer(2, 1)

	b.ReportAllocs()
	for b.Loop() {
		m.Mix(dst, src, n)
	}
}

func TestChannelMixer_ZeroAllocs(t *testing.T) {
	const n = 1024
	src := [][]float32{make([]float32, n), make([]float32, n), make([]float32, n)}
	dst := [][]float32{make([]float32, n), make([]float32, n)}
	m := NewChannelMixer(3, 2)

	allocs := testing.AllocsPerRun(100, func() {
		m.Mix(dst, src, n)
	})
	if allocs > 0 {
		t.Errorf("Mix() allocated %v times per run, want 0", allocs)
	}
}
