// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files. The
// decoder runs inside the demuxer, so packets already hold PCM: interleaved
// 16-bit little-endian stereo, PacketSamples samples per channel. The codec
// registered under Codec turns them into planar frames.
//
// # Supported Formats
//
// The decoder supports:
//   - MP3 (MPEG-1 Audio Layer 3)
//   - Various bitrates
//   - Stereo output (mono files are duplicated to both channels)
//
// # Registration
//
//	registry := audio.NewRegistry()
//	mp3.Register(registry)
//
// # Seeking
//
// go-mp3 seeks with sample accuracy over a seekable input, so SeekTo lands
// on the exact sample under the requested time.
//
// # Limitations
//
// Note:
//   - MP3 writing is not supported (decoding only)
//   - Output is always stereo
//   - Duration is exact only for inputs whose length go-mp3 can determine
package mp3
