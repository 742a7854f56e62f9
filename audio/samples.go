// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/audxcode/utils"
)

func readSample(f SampleFormat, b []byte) float32 {
	switch f.Packed() {
	case FormatU8:
		return utils.Uint8ToFloat32(b[0])
	case FormatS16:
		return utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(b)))
	case FormatS32:
		return utils.Int32ToFloat32(int32(binary.LittleEndian.Uint32(b)))
	case FormatF32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case FormatF64:
		return float32(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	}
	return 0
}

func writeSample(f SampleFormat, b []byte, v float32) {
	switch f.Packed() {
	case FormatU8:
		b[0] = utils.Float32ToUint8(v)
	case FormatS16:
		binary.LittleEndian.PutUint16(b, uint16(utils.Float32ToInt16(v)))
	case FormatS32:
		binary.LittleEndian.PutUint32(b, uint32(utils.Float32ToInt32(v)))
	case FormatF32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	case FormatF64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(float64(v)))
	}
}

func checkPlanes(format SampleFormat, channels int, planes [][]byte, n int) error {
	bps := format.BytesPerSample()
	if bps == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrOutOfRange, channels)
	}
	want := format.Planes(channels)
	if len(planes) < want {
		return fmt.Errorf("%w: %d planes, need %d", ErrOutOfRange, len(planes), want)
	}
	size := n * format.RowStride(channels)
	for i := range want {
		if len(planes[i]) < size {
			return fmt.Errorf("%w: plane %d holds %d bytes, need %d", ErrOutOfRange, i, len(planes[i]), size)
		}
	}
	return nil
}

// DecodeSamples converts n samples of every channel stored in planes, laid
// out as format, into dst (one slice per channel, each at least n long).
func DecodeSamples(format SampleFormat, channels int, planes [][]byte, n int, dst [][]float32) error {
	if err := checkPlanes(format, channels, planes, n); err != nil {
		return err
	}

	bps := format.BytesPerSample()
	if format.IsPlanar() {
		for c := range channels {
			plane, out := planes[c], dst[c][:n]
			for i := range out {
				out[i] = readSample(format, plane[i*bps:])
			}
		}
		return nil
	}

	plane := planes[0]
	for i := range n {
		base := i * channels * bps
		for c := range channels {
			dst[c][i] = readSample(format, plane[base+c*bps:])
		}
	}
	return nil
}

// EncodeSamples is the inverse of DecodeSamples: it writes n samples of
// every channel from src into planes laid out as format.
func EncodeSamples(format SampleFormat, channels int, src [][]float32, n int, planes [][]byte) error {
	if err := checkPlanes(format, channels, planes, n); err != nil {
		return err
	}

	bps := format.BytesPerSample()
	if format.IsPlanar() {
		for c := range channels {
			plane, in := planes[c], src[c][:n]
			for i, v := range in {
				writeSample(format, plane[i*bps:], v)
			}
		}
		return nil
	}

	plane := planes[0]
	for i := range n {
		base := i * channels * bps
		for c := range channels {
			writeSample(format, plane[base+c*bps:], src[c][i])
		}
	}
	return nil
}

// Interleave packs n samples per channel from planar planes into dst, which
// must hold n*channels*bps bytes. Samples are copied byte for byte.
func Interleave(dst []byte, planes [][]byte, bps, n int) {
	channels := len(planes)
	for c, plane := range planes {
		for i := range n {
			copy(dst[(i*channels+c)*bps:(i*channels+c+1)*bps], plane[i*bps:(i+1)*bps])
		}
	}
}

// Deinterleave splits an interleaved plane into one plane per channel.
func Deinterleave(planes [][]byte, src []byte, bps, n int) {
	channels := len(planes)
	for c, plane := range planes {
		for i := range n {
			copy(plane[i*bps:(i+1)*bps], src[(i*channels+c)*bps:(i*channels+c+1)*bps])
		}
	}
}

// AllocPlanes returns zeroed planes sized for n samples of format.
func AllocPlanes(format SampleFormat, channels, n int) [][]byte {
	planes := make([][]byte, format.Planes(channels))
	for i := range planes {
		planes[i] = make([]byte, n*format.RowStride(channels))
	}
	return planes
}
