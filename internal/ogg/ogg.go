// SPDX-License-Identifier: EPL-2.0

// Package ogg edits complete Ogg pages produced by another page writer.
package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header type flags.
const (
	FlagContinued = 0x01
	FlagBOS       = 0x02
	FlagEOS       = 0x04
)

const headerSize = 27

var (
	// ErrClosed is returned when writing after the end-of-stream page.
	ErrClosed = errors.New("ogg stream already ended")
	// ErrMalformed is returned for data that is not exactly one page.
	ErrMalformed = errors.New("malformed ogg page")
)

var crcTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// Checksum computes the page CRC: polynomial 0x04c11db7, no reflection, zero
// initial value and no final xor.
func Checksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// Page is one complete Ogg page.
type Page []byte

// Validate checks the capture pattern and that the segment table accounts
// for every byte of p.
func (p Page) Validate() error {
	if len(p) < headerSize || !bytes.HasPrefix(p, []byte("OggS")) {
		return fmt.Errorf("%w: bad header", ErrMalformed)
	}
	n := int(p[26])
	if len(p) < headerSize+n {
		return fmt.Errorf("%w: short segment table", ErrMalformed)
	}
	size := headerSize + n
	for _, s := range p[headerSize : headerSize+n] {
		size += int(s)
	}
	if size != len(p) {
		return fmt.Errorf("%w: %d bytes, segment table says %d", ErrMalformed, len(p), size)
	}
	return nil
}

func (p Page) Flags() byte        { return p[5] }
func (p Page) SetFlags(f byte)    { p[5] = f }
func (p Page) Granule() int64     { return int64(binary.LittleEndian.Uint64(p[6:])) }
func (p Page) SetGranule(g int64) { binary.LittleEndian.PutUint64(p[6:], uint64(g)) }
func (p Page) Serial() uint32     { return binary.LittleEndian.Uint32(p[14:]) }
func (p Page) Sequence() uint32   { return binary.LittleEndian.Uint32(p[18:]) }

// Body returns the packet data of p. Writes to it change p.
func (p Page) Body() []byte { return p[headerSize+int(p[26]):] }

// Seal recomputes the checksum after p was edited.
func (p Page) Seal() {
	binary.LittleEndian.PutUint32(p[22:], 0)
	binary.LittleEndian.PutUint32(p[22:], Checksum(p))
}

// Rewriter sits between a page writer and w. Every Write must carry exactly
// one page; fix may edit it before it is sealed and passed on. The latest
// page is held back so that Finish can flag it end of stream.
type Rewriter struct {
	w     io.Writer
	fix   func(Page)
	held  Page
	pages int
	done  bool
}

// NewRewriter returns a Rewriter writing to w. fix may be nil.
func NewRewriter(w io.Writer, fix func(Page)) *Rewriter {
	return &Rewriter{w: w, fix: fix}
}

func (r *Rewriter) Write(b []byte) (int, error) {
	if r.done {
		return 0, ErrClosed
	}
	p := Page(bytes.Clone(b))
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := r.emit(); err != nil {
		return 0, err
	}
	if r.fix != nil {
		r.fix(p)
	}
	r.held = p
	return len(b), nil
}

func (r *Rewriter) emit() error {
	if r.held == nil {
		return nil
	}
	p := r.held
	r.held = nil
	p.Seal()
	if _, err := r.w.Write(p); err != nil {
		return fmt.Errorf("%w", err)
	}
	r.pages++
	return nil
}

// Finish flags the held page end of stream and writes it. Later calls do
// nothing.
func (r *Rewriter) Finish() error {
	if r.done {
		return nil
	}
	r.done = true
	if r.held != nil {
		r.held.SetFlags(r.held.Flags() | FlagEOS)
	}
	return r.emit()
}

// Pages returns the number of pages passed on to w so far.
func (r *Rewriter) Pages() int { return r.pages }
