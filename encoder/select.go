// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"slices"

	"github.com/ik5/audxcode/audio"
)

// SelectSampleRate picks the rate to encode at: want itself when supported,
// else the nearest higher supported rate, else the nearest lower one. A nil
// list supports anything.
func SelectSampleRate(supported []int, want int) int {
	if len(supported) == 0 || slices.Contains(supported, want) {
		return want
	}

	higher, lower := 0, 0
	for _, r := range supported {
		switch {
		case r > want && (higher == 0 || r < higher):
			higher = r
		case r < want && r > lower:
			lower = r
		}
	}
	if higher != 0 {
		return higher
	}
	return lower
}

// SelectLayout picks the channel layout: want itself when supported, else
// the first layout with as many channels, else the one with the nearest
// channel count, preferring more channels on a tie.
func SelectLayout(supported []audio.ChannelLayout, want audio.ChannelLayout) audio.ChannelLayout {
	if len(supported) == 0 || slices.Contains(supported, want) {
		return want
	}

	channels := want.Channels()
	best, bestDist := supported[0], -1
	for _, l := range supported {
		n := l.Channels()
		if n == channels {
			return l
		}
		dist := n - channels
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && n > best.Channels()) {
			best, bestDist = l, dist
		}
	}
	return best
}

// SelectFormat picks the sample format: want itself when supported, else its
// planar variant, else the first supported format.
func SelectFormat(supported []audio.SampleFormat, want audio.SampleFormat) audio.SampleFormat {
	if len(supported) == 0 || slices.Contains(supported, want) {
		return want
	}
	if slices.Contains(supported, want.Planar()) {
		return want.Planar()
	}
	return supported[0]
}

// negotiate fits cfg to what f supports.
func negotiate(f audio.EncoderFactory, cfg audio.StreamConfig) audio.StreamConfig {
	layout := cfg.Layout
	if layout == audio.LayoutUnspecified {
		layout = audio.DefaultLayout(cfg.Channels)
	}

	out := cfg
	out.SampleRate = SelectSampleRate(f.SupportedSampleRates(), cfg.SampleRate)
	out.Layout = SelectLayout(f.SupportedLayouts(), layout)
	if n := out.Layout.Channels(); n > 0 {
		out.Channels = n
	}
	out.Format = SelectFormat(f.SupportedFormats(), cfg.Format)
	return out
}
