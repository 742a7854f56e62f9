// SPDX-License-Identifier: EPL-2.0

// Package buffer provides the growable sample accumulation buffer that sits
// between the resampler and the encoder.
//
// Decoded frames arrive in codec-native sizes while encoders want fixed-size
// frames. SampleBuffer collects resampled bytes, one row per output plane,
// until a whole encoder frame is available:
//
//	buf, _ := buffer.New(2)
//	res, _ := buf.Reserve(stage.RequiredOutputBytes(n))
//	written, _ := stage.Resample(in, n, res.Rows())
//	res.Commit(written)
//
//	for buf.Len() >= frameBytes {
//	    block, _ := buf.Front(frameBytes)
//	    // encode block
//	    buf.ConsumeFront(frameBytes)
//	}
//
// Reserved bytes are never visible until committed, so over-reserving is
// always safe.
package buffer
