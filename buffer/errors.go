// SPDX-License-Identifier: EPL-2.0

package buffer

import "errors"

var (
	// ErrReservationOpen is returned when the buffer is mutated while a
	// Reservation has been neither committed nor cancelled.
	ErrReservationOpen = errors.New("reservation still open")

	// ErrReleased is returned by every call on a released buffer.
	ErrReleased = errors.New("buffer released")
)
