// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files.
// Vorbis is a free, open-source lossy audio compression format.
//
// # Supported Formats
//
// The decoder supports:
//   - Ogg Vorbis (.ogg and .oga files)
//   - Variable bitrates
//   - Any channel count and sample rate
//
// # Registration
//
//	registry := audio.NewRegistry()
//	vorbis.Register(registry)
//
// The demuxer decodes as it reads, so packets hold interleaved float32
// samples. The codec registered under Codec splits them into planar float
// frames.
//
// # Limitations
//
// Note:
//   - Vorbis writing is not supported (decoding only)
//   - Only the first logical stream of a chained file is read
package vorbis
