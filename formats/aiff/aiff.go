// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/internal/intpcm"
)

// Container describes the AIFF format.
var Container = audio.Container{
	Name:         "aiff",
	Extensions:   []string{"aiff", "aif", "aifc"},
	Probe:        Probe,
	OpenDemuxer:  OpenDemuxer,
	NewMuxer:     NewMuxer,
	DefaultCodec: audio.PCMCodec,
}

// Register adds the AIFF container and the PCM codecs to r.
func Register(r *audio.Registry) {
	r.RegisterContainer(Container)
	audio.RegisterPCM(r)
}

// Probe reports whether header starts an AIFF or AIFF-C file.
func Probe(header []byte) bool {
	if len(header) < 12 || !bytes.Equal(header[0:4], []byte("FORM")) {
		return false
	}
	kind := header[8:12]
	return bytes.Equal(kind, []byte("AIFF")) || bytes.Equal(kind, []byte("AIFC"))
}

// OpenDemuxer reads the AIFF header from r.
func OpenDemuxer(r io.ReadSeeker) (audio.Demuxer, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	// Read file info
	dec.ReadInfo()

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	d, err := intpcm.NewDemuxer(dec, format.SampleRate, format.NumChannels, int(dec.BitDepth), int64(dec.NumSampleFrames))
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return d, nil
}

// NewMuxer writes a single PCM stream as 16 or 32-bit AIFF.
func NewMuxer(w io.WriteSeeker, streams []audio.StreamConfig) (audio.Muxer, error) {
	m, err := intpcm.NewMuxer(streams, func(bitDepth int) intpcm.Writer {
		cfg := streams[0]
		return aiff.NewEncoder(w, cfg.SampleRate, bitDepth, cfg.Channels)
	})
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return m, nil
}
