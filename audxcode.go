// SPDX-License-Identifier: EPL-2.0

package audxcode

import (
	"context"
	"time"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/decoder"
	"github.com/ik5/audxcode/formats/aiff"
	"github.com/ik5/audxcode/formats/flac"
	"github.com/ik5/audxcode/formats/mp3"
	"github.com/ik5/audxcode/formats/opus"
	"github.com/ik5/audxcode/formats/vorbis"
	"github.com/ik5/audxcode/formats/wav"
	"github.com/ik5/audxcode/inspector"
	"github.com/ik5/audxcode/transcoder"
)

// NewRegistry returns a registry holding every container and codec this
// module ships. The Opus encoder only works in builds with the opus tag.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	wav.Register(r)
	aiff.Register(r)
	mp3.Register(r)
	vorbis.Register(r)
	flac.Register(r)
	opus.Register(r)
	return r
}

// Transcode converts the audio of in into out, limited to [startMs, endMs)
// of the input. An endMs of 0 means the end of the input. Containers are
// picked by file extension.
func Transcode(ctx context.Context, in, out string, startMs, endMs int64, opts ...transcoder.Option) error {
	return transcoder.New(NewRegistry(), opts...).Transcode(ctx, in, out, startMs, endMs)
}

// AudioDuration returns the playback duration of the audio in path.
func AudioDuration(path string) (time.Duration, error) {
	return inspector.AudioDuration(path, decoder.WithRegistry(NewRegistry()))
}
