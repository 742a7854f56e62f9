// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math/bits"
	"strconv"
)

// SampleFormat identifies how one sample is stored in memory and whether the
// channels of a frame share one plane (interleaved) or use one plane each.
type SampleFormat int8

const (
	FormatNone SampleFormat = iota
	FormatU8
	FormatS16
	FormatS32
	FormatF32
	FormatF64
	FormatU8P
	FormatS16P
	FormatS32P
	FormatF32P
	FormatF64P
)

var formatNames = [...]string{
	FormatNone: "none",
	FormatU8:   "u8",
	FormatS16:  "s16",
	FormatS32:  "s32",
	FormatF32:  "flt",
	FormatF64:  "dbl",
	FormatU8P:  "u8p",
	FormatS16P: "s16p",
	FormatS32P: "s32p",
	FormatF32P: "fltp",
	FormatF64P: "dblp",
}

func (f SampleFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "SampleFormat(" + strconv.Itoa(int(f)) + ")"
	}
	return formatNames[f]
}

// ParseSampleFormat returns the format with the given short name ("s16", "fltp", ...).
func ParseSampleFormat(name string) (SampleFormat, bool) {
	for i, n := range formatNames {
		if n == name && i != int(FormatNone) {
			return SampleFormat(i), true
		}
	}
	return FormatNone, false
}

// BytesPerSample returns the size of a single sample of a single channel.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8, FormatU8P:
		return 1
	case FormatS16, FormatS16P:
		return 2
	case FormatS32, FormatS32P, FormatF32, FormatF32P:
		return 4
	case FormatF64, FormatF64P:
		return 8
	default:
		return 0
	}
}

// IsPlanar reports whether every channel lives in its own plane.
func (f SampleFormat) IsPlanar() bool {
	return f >= FormatU8P && f <= FormatF64P
}

// Packed returns the interleaved variant of f.
func (f SampleFormat) Packed() SampleFormat {
	if f.IsPlanar() {
		return f - (FormatU8P - FormatU8)
	}
	return f
}

// Planar returns the planar variant of f.
func (f SampleFormat) Planar() SampleFormat {
	if f != FormatNone && !f.IsPlanar() {
		return f + (FormatU8P - FormatU8)
	}
	return f
}

// Planes returns how many planes a frame with the given channel count uses.
func (f SampleFormat) Planes(channels int) int {
	if f.IsPlanar() {
		return channels
	}
	return 1
}

// RowStride returns how many bytes one sample instant occupies in a single
// plane: the sample size for planar formats, sample size times channel count
// for interleaved ones.
func (f SampleFormat) RowStride(channels int) int {
	if f.IsPlanar() {
		return f.BytesPerSample()
	}
	return f.BytesPerSample() * channels
}

// ChannelLayout is a bitmask of speaker positions.
type ChannelLayout uint64

const (
	ChannelFrontLeft ChannelLayout = 1 << iota
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLowFrequency
	ChannelBackLeft
	ChannelBackRight
	ChannelFrontLeftOfCenter
	ChannelFrontRightOfCenter
	ChannelBackCenter
	ChannelSideLeft
	ChannelSideRight
)

const (
	LayoutMono         = ChannelFrontCenter
	LayoutStereo       = ChannelFrontLeft | ChannelFrontRight
	LayoutSurround     = LayoutStereo | ChannelFrontCenter
	Layout4Point0      = LayoutSurround | ChannelBackCenter
	Layout5Point0Back  = LayoutSurround | ChannelBackLeft | ChannelBackRight
	Layout5Point1Back  = Layout5Point0Back | ChannelLowFrequency
	Layout6Point1      = Layout5Point1Back | ChannelBackCenter
	Layout7Point1      = Layout5Point1Back | ChannelSideLeft | ChannelSideRight
	LayoutUnspecified  = ChannelLayout(0)
	maxDefaultChannels = 8
)

// Channels returns the number of speaker positions in the layout.
func (l ChannelLayout) Channels() int { return bits.OnesCount64(uint64(l)) }

// DefaultLayout returns the conventional layout for a channel count, or
// LayoutUnspecified when none is defined.
func DefaultLayout(channels int) ChannelLayout {
	switch channels {
	case 1:
		return LayoutMono
	case 2:
		return LayoutStereo
	case 3:
		return LayoutSurround
	case 4:
		return Layout4Point0
	case 5:
		return Layout5Point0Back
	case 6:
		return Layout5Point1Back
	case 7:
		return Layout6Point1
	case maxDefaultChannels:
		return Layout7Point1
	default:
		return LayoutUnspecified
	}
}
