// SPDX-License-Identifier: EPL-2.0

// Package audio provides the shared model and low-level engines of the
// transcoding pipeline.
//
// This package contains the building blocks every other package talks in:
//   - SampleFormat and ChannelLayout, the shape of raw samples
//   - StreamDescriptor, StreamConfig, Frame and Packet
//   - Demuxer, FrameDecoder, FrameEncoder, EncoderFactory and Muxer, the
//     engine interfaces implemented by the formats packages
//   - Registry, which maps containers and codec names to engines
//   - Resampler and ChannelMixer for rate, layout and format conversion
//   - the PCM codec used by the uncompressed containers
//
// # Sample Layout
//
// Raw samples live in byte planes. Planar formats (s16p, fltp, ...) use one
// plane per channel; interleaved formats use a single plane with the channels
// of every sample instant next to each other. RowStride reports how many
// bytes one sample instant takes in a single plane:
//
//	f := audio.FormatS16P
//	planes := audio.AllocPlanes(f, 2, 1024) // 2 planes of 2048 bytes
//
// All multi-byte samples are little endian.
//
// # Resampling
//
// The Resampler is push based. Every Convert call consumes the whole input
// block and writes what is already determined; MaxOutput tells how large the
// output planes must be:
//
//	r, _ := audio.NewResampler(audio.ResamplerConfig{
//	    InRate: 44100, InChannels: 2, InFormat: audio.FormatS16,
//	    OutRate: 48000, OutChannels: 2, OutFormat: audio.FormatS16P,
//	})
//	out := audio.AllocPlanes(audio.FormatS16P, 2, r.MaxOutput(n))
//	produced, err := r.Convert(in, n, out)
//
// Interpolation needs a few samples of lookahead. Call Flush once the input
// is exhausted to emit them; Pending reports how many samples are left.
//
// Downsampling runs the signal through a one-pole low-pass filter first.
// Equal rates skip interpolation entirely, so same-rate conversions are
// exact up to the format change.
//
// # Format Registry
//
// The registry holds container formats by extension and codecs by name:
//
//	registry := audio.NewRegistry()
//	wav.Register(registry)
//	c, ok := registry.ContainerForPath("in.wav")
//	dec, ok := registry.Decoder(c.DefaultCodec)
//
// The registry is the only object shared between pipeline runs and is safe
// for concurrent use.
//
// # Error Handling
//
// Errors are sentinel values declared in errors.go and wrapped with context
// at the point of origin; check them with errors.Is:
//
//	if errors.Is(err, audio.ErrOutputExists) {
//	    // pick another name
//	}
//
// Engines report ErrAgain when they need more input and io.EOF once they are
// drained.
package audio
