// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/internal/intpcm"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// Container describes the WAV format.
var Container = audio.Container{
	Name:         "wav",
	Extensions:   []string{"wav", "wave"},
	Probe:        Probe,
	OpenDemuxer:  OpenDemuxer,
	NewMuxer:     NewMuxer,
	DefaultCodec: audio.PCMCodec,
}

// Register adds the WAV container and the PCM codecs to r.
func Register(r *audio.Registry) {
	r.RegisterContainer(Container)
	audio.RegisterPCM(r)
}

// Probe reports whether header starts a RIFF/WAVE file.
func Probe(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

// OpenDemuxer reads the WAV header from r and positions it at the first
// sample.
func OpenDemuxer(r io.ReadSeeker) (audio.Demuxer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: audio format %#x", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	total := int64(-1)
	if frame := channels * bitDepth / 8; frame > 0 {
		total = int64(dec.PCMSize / frame)
	}

	d, err := intpcm.NewDemuxer(dec, int(dec.SampleRate), channels, bitDepth, total)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return d, nil
}

// NewMuxer writes a single PCM stream as 16 or 32-bit WAV.
func NewMuxer(w io.WriteSeeker, streams []audio.StreamConfig) (audio.Muxer, error) {
	m, err := intpcm.NewMuxer(streams, func(bitDepth int) intpcm.Writer {
		cfg := streams[0]
		return wav.NewEncoder(w, cfg.SampleRate, bitDepth, cfg.Channels, formatPCM)
	})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return m, nil
}
