// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"

	"github.com/ik5/audxcode/audio"
)

// SampleBuffer accumulates raw sample bytes in a fixed number of rows, one
// per output plane. All rows always hold the same number of bytes: data is
// only ever appended to every row at once (Reserve and Commit) or removed
// from the front of every row at once (ConsumeFront).
//
// A SampleBuffer is owned by a single pipeline run and is not safe for
// concurrent use.
type SampleBuffer struct {
	rows     [][]byte
	off      int // consumed prefix, shared by all rows
	res      *Reservation
	released bool
}

// New returns a buffer with the given number of empty rows.
func New(rows int) (*SampleBuffer, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("%w: %d rows", audio.ErrOutOfRange, rows)
	}

	return &SampleBuffer{rows: make([][]byte, rows)}, nil
}

func (b *SampleBuffer) Rows() int { return len(b.rows) }

// Len returns the number of live bytes in every row.
func (b *SampleBuffer) Len() int {
	if b.released {
		return 0
	}
	return len(b.rows[0]) - b.off
}

func (b *SampleBuffer) check() error {
	if b.released {
		return ErrReleased
	}
	if b.res != nil {
		return ErrReservationOpen
	}
	return nil
}

// Reserve makes room for extra more bytes at the end of every row and
// returns the write region. Nothing becomes visible through Len or Front
// until the reservation is committed.
func (b *SampleBuffer) Reserve(extra int) (*Reservation, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if extra < 0 {
		return nil, fmt.Errorf("%w: reserve %d bytes", audio.ErrOutOfRange, extra)
	}

	if cap(b.rows[0])-len(b.rows[0]) < extra {
		b.compact()
	}

	regions := make([][]byte, len(b.rows))
	for i, row := range b.rows {
		if cap(row)-len(row) < extra {
			grown := make([]byte, len(row), 2*len(row)+extra)
			copy(grown, row)
			row = grown
			b.rows[i] = row
		}
		regions[i] = row[len(row) : len(row)+extra : len(row)+extra]
	}

	b.res = &Reservation{buf: b, regions: regions, size: extra}
	return b.res, nil
}

// ConsumeFront removes count bytes from the front of every row. A count
// larger than Len fails with audio.ErrOutOfRange and leaves the buffer as
// it was.
func (b *SampleBuffer) ConsumeFront(count int) error {
	if err := b.check(); err != nil {
		return err
	}
	if count < 0 || count > b.Len() {
		return fmt.Errorf("%w: consume %d of %d bytes", audio.ErrOutOfRange, count, b.Len())
	}

	b.off += count
	if b.Len() == 0 {
		for i := range b.rows {
			b.rows[i] = b.rows[i][:0]
		}
		b.off = 0
	} else if b.off > b.Len() {
		b.compact()
	}
	return nil
}

// Front returns views of the first count bytes of every row. The views stay
// valid until the next mutating call and must not be written to.
func (b *SampleBuffer) Front(count int) ([][]byte, error) {
	if b.released {
		return nil, ErrReleased
	}
	if count < 0 || count > b.Len() {
		return nil, fmt.Errorf("%w: front %d of %d bytes", audio.ErrOutOfRange, count, b.Len())
	}

	views := make([][]byte, len(b.rows))
	for i, row := range b.rows {
		views[i] = row[b.off : b.off+count : b.off+count]
	}
	return views, nil
}

// Release drops all rows. An open reservation is cancelled.
func (b *SampleBuffer) Release() {
	if b.res != nil {
		b.res.done = true
		b.res = nil
	}
	b.rows = nil
	b.off = 0
	b.released = true
}

// compact moves the live bytes of every row to the start of its storage.
func (b *SampleBuffer) compact() {
	if b.off == 0 {
		return
	}
	for i, row := range b.rows {
		b.rows[i] = row[:copy(row, row[b.off:])]
	}
	b.off = 0
}

// Reservation is a pending append to every row of a SampleBuffer.
type Reservation struct {
	buf     *SampleBuffer
	regions [][]byte
	size    int
	done    bool
}

// Rows returns one write region per buffer row, each Size bytes long.
func (r *Reservation) Rows() [][]byte { return r.regions }

func (r *Reservation) Size() int { return r.size }

// Commit appends the first written bytes of every region to the buffer.
func (r *Reservation) Commit(written int) error {
	if r.done {
		return fmt.Errorf("%w: reservation already closed", audio.ErrUnexpected)
	}
	if written < 0 || written > r.Size() {
		return fmt.Errorf("%w: commit %d of %d reserved bytes", audio.ErrOutOfRange, written, r.Size())
	}

	b := r.buf
	for i, row := range b.rows {
		b.rows[i] = row[:len(row)+written]
	}
	r.close()
	return nil
}

// Cancel discards the reservation; calling it after Commit is a no-op.
func (r *Reservation) Cancel() {
	if !r.done {
		r.close()
	}
}

func (r *Reservation) close() {
	r.done = true
	r.regions = nil
	if r.buf.res == r {
		r.buf.res = nil
	}
}
