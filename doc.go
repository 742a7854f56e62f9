// SPDX-License-Identifier: EPL-2.0

// Package audxcode transcodes the audio of media files, optionally cutting
// out a time window of the input on the way.
//
// A run decodes the single audio stream of the input, converts it to the
// sample rate, channel layout and sample format the output encoder accepts,
// and encodes it into the output container. The output file is created
// exclusively and removed again when the run fails, so a failed run never
// leaves a partial file behind and never replaces an existing one.
//
// # Supported Formats
//
// Containers are chosen by file extension, and inputs without a known
// extension are probed by content:
//   - WAV (PCM 16, 24 and 32-bit) via formats/wav, read and write
//   - AIFF (PCM 16, 24 and 32-bit) via formats/aiff, read and write
//   - MP3 via formats/mp3, read only
//   - Ogg Vorbis via formats/vorbis, read only
//   - FLAC via formats/flac, read only
//   - Ogg Opus via formats/opus, write only, in builds with the opus tag
//
// # Quick Start
//
// Transcode a whole file:
//
//	err := audxcode.Transcode(ctx, "talk.mp3", "talk.wav", 0, 0)
//
// Transcode the range from 1.5s to 4s of the input:
//
//	err := audxcode.Transcode(ctx, "talk.mp3", "clip.wav", 1500, 4000)
//
// Failures are reported as the sentinel errors of the audio package:
//
//	switch {
//	case errors.Is(err, audio.ErrOutputExists):
//	case errors.Is(err, audio.ErrUnsupportedInputFormat):
//	case errors.Is(err, audio.ErrProcessingAborted):
//	}
//
// # Building Pipelines
//
// The stages are available on their own for more control:
//
//	// decoder.Open delivers the frames of a time window
//	src, _ := decoder.Open("in.flac", window, audio.NewMediaSet(audio.MediaAudio),
//	    decoder.WithRegistry(audxcode.NewRegistry()))
//
//	// resampler.New converts rate, channels and format
//	stage, _ := resampler.New(resampler.Config{...})
//
//	// buffer.New collects converted rows until a full encoder frame is ready
//	buf, _ := buffer.New(rows)
//
//	// encoder.Open negotiates the encoder and writes the container
//	sink, _ := encoder.Open("out.wav", []audio.StreamConfig{cfg})
//
// transcoder.Transcoder wires these together and adds logging and metrics.
//
// # Performance
//
// Runs are single threaded and stream the input: memory use is bounded by
// one decoded frame plus one encoder frame, whatever the input length.
// Resampling uses cubic interpolation in integer position arithmetic, so
// long inputs do not drift.
//
// See the individual subpackages for more detailed documentation.
package audxcode
