// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// MediaType tags the kind of payload a stream carries.
type MediaType uint8

const (
	MediaUnknown MediaType = iota
	MediaAudio
	MediaVideo
	MediaSubtitle
)

func (t MediaType) String() string {
	switch t {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	case MediaSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// MediaSet is a closed set of media types.
type MediaSet uint8

// NewMediaSet builds a set out of the given types.
func NewMediaSet(types ...MediaType) MediaSet {
	var s MediaSet
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

func (s MediaSet) Has(t MediaType) bool { return s&(1<<t) != 0 }
func (s MediaSet) Empty() bool          { return s == 0 }

// Types lists the members of the set in ascending order.
func (s MediaSet) Types() []MediaType {
	var out []MediaType
	for t := MediaUnknown; t <= MediaSubtitle; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// DurationUnknown is reported when a container carries no duration.
const DurationUnknown int64 = -1

// Rational is a time base: one tick lasts Num/Den seconds.
type Rational struct {
	Num int64
	Den int64
}

// StreamDescriptor describes one stream of an opened input.
type StreamDescriptor struct {
	Index      int
	Type       MediaType
	Codec      string
	SampleRate int
	Channels   int
	Layout     ChannelLayout
	Format     SampleFormat
	TimeBase   Rational
}

// StreamConfig is the requested (and, after negotiation, actual) shape of an
// output stream.
type StreamConfig struct {
	Codec      string
	SampleRate int
	Channels   int
	Layout     ChannelLayout
	Format     SampleFormat
}

// Frame is one unit of raw samples. Planes holds one slice per channel for
// planar formats, a single interleaved slice otherwise. A frame handed to a
// callback is only valid for the duration of that call.
type Frame struct {
	Planes  [][]byte
	Samples int
	PTS     int64
	Discard bool
}

// Packet is one demuxed or encoded unit.
type Packet struct {
	StreamIndex int
	PTS         int64
	Duration    int64
	Data        []byte
	Discard     bool
}

// Demuxer reads packets out of an input container.
type Demuxer interface {
	Streams() []StreamDescriptor
	// Duration in microseconds, or DurationUnknown.
	Duration() int64
	// ReadPacket returns io.EOF once the container is exhausted.
	ReadPacket() (*Packet, error)
	SeekTo(us int64) error
	Close() error
}

// FrameDecoder turns packets of one stream into frames.
type FrameDecoder interface {
	SendPacket(pkt *Packet) error
	// ReceiveFrame returns ErrAgain when more input is needed and io.EOF
	// when the decoder is drained.
	ReceiveFrame() (*Frame, error)
	Close() error
}

// FrameEncoder turns frames into packets.
type FrameEncoder interface {
	// FrameSize is the number of samples per channel every frame except the
	// last one must carry.
	FrameSize() int
	// SendFrame submits a frame; nil signals that no more input follows.
	SendFrame(f *Frame) error
	// ReceivePacket returns ErrAgain when the encoder needs more input and
	// io.EOF once it is fully drained.
	ReceivePacket() (*Packet, error)
	Close() error
}

// EncoderFactory describes what an encoder accepts and opens instances of it.
// A nil capability list means any value is accepted.
type EncoderFactory interface {
	SupportedSampleRates() []int
	SupportedLayouts() []ChannelLayout
	SupportedFormats() []SampleFormat
	NewEncoder(cfg StreamConfig) (FrameEncoder, error)
}

// DecoderFactory opens a decoder for a stream.
type DecoderFactory func(desc StreamDescriptor) (FrameDecoder, error)

// Muxer writes packets into an output container.
type Muxer interface {
	WriteHeader() error
	WritePacket(pkt *Packet) error
	WriteTrailer() error
	Close() error
}

// Container describes one file format. Read-only formats leave NewMuxer nil,
// write-only ones leave OpenDemuxer nil.
type Container struct {
	Name       string
	Extensions []string
	// Probe reports whether the leading bytes of a file belong to this format.
	Probe        func(header []byte) bool
	OpenDemuxer  func(r io.ReadSeeker) (Demuxer, error)
	NewMuxer     func(w io.WriteSeeker, streams []StreamConfig) (Muxer, error)
	DefaultCodec string
}
