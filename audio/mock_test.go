// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

type waveform func(sample int, channel int) float32

func constantWave(v float32) waveform {
	return func(int, int) float32 { return v }
}

func sineWave(sampleRate int, frequency float64) waveform {
	return func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(0.8 * math.Sin(2*math.Pi*frequency*t))
	}
}

// rampWave gives every channel its own slowly rising line so channel swaps
// show up in assertions.
func rampWave(sample int, channel int) float32 {
	return float32(channel+1)*0.1 + float32(sample%100)*0.001
}

// newPlanes renders n samples of wave into planes laid out as format.
func newPlanes(format SampleFormat, channels, n int, wave waveform) [][]byte {
	src := make([][]float32, channels)
	for c := range src {
		src[c] = make([]float32, n)
		for i := range src[c] {
			src[c][i] = wave(i, c)
		}
	}

	planes := AllocPlanes(format, channels, n)
	if err := EncodeSamples(format, channels, src, n, planes); err != nil {
		panic(err)
	}
	return planes
}

// floatPlanes decodes planes back into float slices.
func floatPlanes(format SampleFormat, channels, n int, planes [][]byte) [][]float32 {
	dst := make([][]float32, channels)
	for c := range dst {
		dst[c] = make([]float32, n)
	}
	if err := DecodeSamples(format, channels, planes, n, dst); err != nil {
		panic(err)
	}
	return dst
}

// offsetPlanes returns views of planes starting at sample off.
func offsetPlanes(format SampleFormat, channels int, planes [][]byte, off int) [][]byte {
	out := make([][]byte, len(planes))
	stride := format.RowStride(channels)
	for i, p := range planes {
		out[i] = p[off*stride:]
	}
	return out
}
