// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"testing"

	"github.com/ik5/audxcode/audio"
)

func TestSelectSampleRate(t *testing.T) {
	t.Parallel()

	opus := []int{8000, 12000, 16000, 24000, 48000}
	tests := []struct {
		name      string
		supported []int
		want      int
		expected  int
	}{
		{"anything", nil, 44100, 44100},
		{"exact", opus, 16000, 16000},
		{"next higher", opus, 44100, 48000},
		{"nearest higher not first", []int{48000, 96000, 22050}, 32000, 48000},
		{"lower when nothing higher", opus, 96000, 48000},
		{"nearest lower", []int{8000, 16000}, 22050, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SelectSampleRate(tt.supported, tt.want); got != tt.expected {
				t.Errorf("SelectSampleRate(%v, %d) = %d, want %d", tt.supported, tt.want, got, tt.expected)
			}
		})
	}
}

func TestSelectLayout(t *testing.T) {
	t.Parallel()

	quad := audio.Layout4Point0
	frontCenterPair := audio.ChannelFrontCenter | audio.ChannelFrontLeft

	tests := []struct {
		name      string
		supported []audio.ChannelLayout
		want      audio.ChannelLayout
		expected  audio.ChannelLayout
	}{
		{"anything", nil, audio.LayoutSurround, audio.LayoutSurround},
		{"exact", []audio.ChannelLayout{audio.LayoutMono, audio.LayoutStereo}, audio.LayoutStereo, audio.LayoutStereo},
		{"same channel count", []audio.ChannelLayout{audio.LayoutMono, frontCenterPair}, audio.LayoutStereo, frontCenterPair},
		{"nearest count", []audio.ChannelLayout{audio.LayoutMono, audio.LayoutStereo}, quad, audio.LayoutStereo},
		{"tie prefers more", []audio.ChannelLayout{audio.LayoutMono, audio.LayoutSurround}, audio.LayoutStereo, audio.LayoutSurround},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SelectLayout(tt.supported, tt.want); got != tt.expected {
				t.Errorf("SelectLayout() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSelectFormat(t *testing.T) {
	t.Parallel()

	pcm := []audio.SampleFormat{audio.FormatS16P, audio.FormatS32P}
	tests := []struct {
		supported []audio.SampleFormat
		want      audio.SampleFormat
		expected  audio.SampleFormat
	}{
		{nil, audio.FormatF32, audio.FormatF32},
		{pcm, audio.FormatS32P, audio.FormatS32P},
		{pcm, audio.FormatS32, audio.FormatS32P},
		{pcm, audio.FormatF32P, audio.FormatS16P},
	}

	for _, tt := range tests {
		if got := SelectFormat(tt.supported, tt.want); got != tt.expected {
			t.Errorf("SelectFormat(%v, %v) = %v, want %v", tt.supported, tt.want, got, tt.expected)
		}
	}
}
