// SPDX-License-Identifier: EPL-2.0

// Package aiff provides the AIFF container.
//
// This package reads and writes AIFF files through github.com/go-audio/aiff.
// Like the WAV container it exposes one PCM stream of interleaved
// little-endian samples, whatever the byte order in the file.
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
//	registry := audio.NewRegistry()
//	aiff.Register(registry)
//
// Files are matched by the .aiff, .aif and .aifc extensions, and by the
// FORM/AIFF header when the extension is unknown.
//
// # Error Handling
//
// The package defines several error types:
//   - ErrNotAiffFile: The input is not a valid AIFF file
//   - ErrUnsupportedAiffLayout: The header could not be interpreted
package aiff
