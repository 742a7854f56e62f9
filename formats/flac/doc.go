// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC audio file decoding through
// github.com/mewkiz/flac.
//
// Every FLAC frame becomes one packet of interleaved little-endian samples.
// Inputs of up to 16 bits per sample are widened to 16 bits, deeper inputs
// to 32 bits, so the decoder registered under Codec only has to split the
// channels into planes.
//
// Seeking uses the seek table when the file has one and lands on the exact
// requested sample.
package flac
