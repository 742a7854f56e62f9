// SPDX-License-Identifier: EPL-2.0

package audio

// ChannelMixer maps planar float samples from one channel count to another.
// Downmixing averages every input channel into the output channel it folds
// onto; upmixing repeats input channels in order.
type ChannelMixer struct {
	in  int
	out int
}

func NewChannelMixer(in, out int) *ChannelMixer {
	return &ChannelMixer{in: in, out: out}
}

func (m *ChannelMixer) InChannels() int  { return m.in }
func (m *ChannelMixer) OutChannels() int { return m.out }

// Mix writes n samples of every output channel into dst from src.
func (m *ChannelMixer) Mix(dst, src [][]float32, n int) {
	if n == 0 {
		return
	}

	switch {
	case m.in == m.out:
		for c := range m.out {
			copy(dst[c][:n], src[c][:n])
		}
	case m.out == 1:
		m.mixMono(dst[0][:n], src, n)
	case m.in == 1:
		for c := range m.out {
			copy(dst[c][:n], src[0][:n])
		}
	case m.in < m.out:
		for c := range m.out {
			copy(dst[c][:n], src[c%m.in][:n])
		}
	default:
		for c := range m.out {
			out := dst[c][:n]
			clear(out)
			folded := 0
			for s := c; s < m.in; s += m.out {
				for i, v := range src[s][:n] {
					out[i] += v
				}
				folded++
			}
			inv := float32(1.0) / float32(folded)
			for i := range out {
				out[i] *= inv
			}
		}
	}
}

func (m *ChannelMixer) mixMono(dst []float32, src [][]float32, n int) {
	switch m.in {
	case 2: // Stereo (most common)
		l, r := src[0][:n], src[1][:n]
		for i := range dst {
			dst[i] = (l[i] + r[i]) * 0.5
		}
	case 4: // Quad
		a, b, c, d := src[0][:n], src[1][:n], src[2][:n], src[3][:n]
		for i := range dst {
			dst[i] = (a[i] + b[i] + c[i] + d[i]) * 0.25
		}
	default:
		invChannels := float32(1.0) / float32(m.in)
		for i := range dst {
			sum := float32(0)
			for c := range m.in {
				sum += src[c][i]
			}
			dst[i] = sum * invChannels
		}
	}
}
