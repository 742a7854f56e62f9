// SPDX-License-Identifier: EPL-2.0

// Package wav provides the WAV container.
//
// Reading and writing both go through github.com/go-audio/wav. The demuxer
// exposes a single PCM stream whose packets carry interleaved little-endian
// samples; the muxer accepts the packets of the PCM encoder.
//
// # Supported Formats
//
// Currently supported:
//   - PCM 16, 24 and 32-bit input (24-bit samples are widened to 32 bits)
//   - PCM 16 and 32-bit output
//   - Any channel count and sample rate
//
// # Registration
//
// Register adds the container and the PCM codecs to a registry:
//
//	registry := audio.NewRegistry()
//	wav.Register(registry)
//
// # Seeking
//
// SeekTo decodes and discards samples up to the target, so the first packet
// after a seek starts exactly at the requested sample. Only forward seeks
// are supported.
//
// # Error Handling
//
// The package defines several error types:
//   - ErrNotWavFile: The input is not a valid WAV file
//   - ErrUnsupportedWavLayout: The audio format is not integer PCM
//   - ErrUnsupportedWavChunks: No data chunk could be found
package wav
