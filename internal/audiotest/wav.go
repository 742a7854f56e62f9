// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// EncodeWAV16 writes a canonical 44-byte-header 16-bit PCM WAV with
// interleaved samples.
func EncodeWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	numChannels := uint16(channels)
	bitsPerSample := uint16(16)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample/8)
	blockAlign := numChannels * (bitsPerSample / 8)
	dataSize := uint32(len(samples) * 2)
	riffSize := 36 + dataSize

	header := make([]byte, 44)

	// RIFF header (12 bytes)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], riffSize)
	copy(header[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	// data chunk header (8 bytes)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteWAV16 creates path and writes a 16-bit PCM WAV into it.
func WriteWAV16(path string, sampleRate, channels int, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := EncodeWAV16(f, sampleRate, channels, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadWAV16 returns the sample rate, channel count and interleaved samples
// of a canonical 16-bit PCM WAV, the kind the wav muxer writes.
func ReadWAV16(path string) (int, int, []int16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0, 0, nil, fmt.Errorf("%s: not a WAV file", path)
	}

	var sampleRate, channels, bits int
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := data[off+8:]
		if size > len(body) {
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			if len(body) < 16 {
				return 0, 0, nil, fmt.Errorf("%s: short fmt chunk", path)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bits = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			if bits != 16 {
				return 0, 0, nil, fmt.Errorf("%s: %d-bit samples", path, bits)
			}
			samples := make([]int16, len(body)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(body[i*2:]))
			}
			return sampleRate, channels, samples, nil
		}

		off += 8 + size + size%2
	}
	return 0, 0, nil, fmt.Errorf("%s: no data chunk", path)
}
