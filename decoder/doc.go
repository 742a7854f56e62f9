// SPDX-License-Identifier: EPL-2.0

// Package decoder opens an input file and delivers the decoded frames of
// the requested media types inside a time window.
//
// The container is picked by file extension, falling back to probing the
// first bytes of the file. Open seeks to the start of the window; Decode
// then runs one read step at a time and stops a stream once its elapsed
// playback time passes the window duration. At the end of the input the
// decoders are drained, so no buffered frame is lost.
package decoder
