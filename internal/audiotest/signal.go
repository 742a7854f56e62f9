// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds signal generators, fixture writers and fake
// engines shared by the package tests.
package audiotest

import (
	"math"

	"github.com/ik5/audxcode/utils"
)

// Waveform generates a sample value in [-1, 1] for a sample index and
// channel.
type Waveform func(sample int, channel int) float32

// Silence generates all zeros.
func Silence(int, int) float32 { return 0 }

// Constant generates the same value everywhere.
func Constant(value float32) Waveform {
	return func(int, int) float32 { return value }
}

// Sine generates a sine wave; every channel is shifted by a quarter period
// so channel mix-ups show in comparisons.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(0.7 * math.Sin(2*math.Pi*frequency*t+float64(channel)*math.Pi/2))
	}
}

// Int16 renders n samples of every channel as interleaved 16-bit PCM.
func Int16(w Waveform, channels, n int) []int16 {
	out := make([]int16, 0, n*channels)
	for i := range n {
		for c := range channels {
			out = append(out, utils.Float32ToInt16(w(i, c)))
		}
	}
	return out
}
