// SPDX-License-Identifier: EPL-2.0

package audxcode

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/decoder"
	"github.com/ik5/audxcode/resampler"
)

// ResampleToMono16 decodes the first audio stream of path, resamples it to
// targetRate, mixes it down to mono and returns the result as 16-bit PCM.
//
// This is a convenience function for short clips: the whole result is held
// in memory. Use Transcode to write long inputs to a file instead.
//
// Example:
//
//	pcm16, rate, err := audxcode.ResampleToMono16("call.mp3", 8000)
//	if err != nil {
//	    panic(err)
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(path string, targetRate int) ([]int16, int, error) {
	window := decoder.Window{DurationUs: decoder.Unbounded}
	src, err := decoder.Open(path, window, audio.NewMediaSet(audio.MediaAudio),
		decoder.WithRegistry(NewRegistry()))
	if err != nil {
		return nil, targetRate, err
	}
	defer src.Close()

	index := -1
	for i := range src.StreamCount() {
		if d, _ := src.Stream(i); d.Type == audio.MediaAudio {
			index = i
			break
		}
	}
	in, err := src.Stream(index)
	if err != nil {
		return nil, targetRate, err
	}

	stage, err := resampler.New(resampler.Config{
		InRate:      in.SampleRate,
		InChannels:  in.Channels,
		InFormat:    in.Format,
		OutRate:     targetRate,
		OutChannels: 1,
		OutFormat:   audio.FormatS16,
	})
	if err != nil {
		return nil, targetRate, err
	}
	defer stage.Close()

	// Pre-allocate based on the container duration when it is known
	estimated := targetRate * 2
	if us := src.Duration(); us > 0 {
		estimated = int(us * int64(targetRate) / 1_000_000)
	}
	pcm16 := make([]int16, 0, estimated)

	var scratch []byte
	appendBytes := func(n int) {
		for i := 0; i+1 < n; i += 2 {
			pcm16 = append(pcm16, int16(binary.LittleEndian.Uint16(scratch[i:])))
		}
	}

	var stageErr error
	stride := in.Format.RowStride(in.Channels)
	handle := func(i int, f *audio.Frame) bool {
		if i != index {
			return true
		}
		inBytes := f.Samples * stride
		if need := stage.RequiredOutputBytes(inBytes); cap(scratch) < need {
			scratch = make([]byte, need)
		}
		scratch = scratch[:cap(scratch)]

		n, err := stage.Resample(f.Planes, inBytes, [][]byte{scratch})
		if err != nil {
			stageErr = err
			return false
		}
		appendBytes(n)
		return true
	}

	for {
		err := src.Decode(handle)
		if errors.Is(err, audio.ErrEndOfStream) {
			break
		}
		if err != nil {
			if stageErr != nil {
				return nil, targetRate, stageErr
			}
			return nil, targetRate, fmt.Errorf("%w", err)
		}
	}

	if tail := stage.FlushBytes(); tail > 0 {
		if cap(scratch) < tail {
			scratch = make([]byte, tail)
		}
		n, err := stage.Flush([][]byte{scratch[:tail]})
		if err != nil {
			return nil, targetRate, err
		}
		appendBytes(n)
	}

	return pcm16, targetRate, nil
}
