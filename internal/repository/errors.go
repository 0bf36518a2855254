package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup by primary key matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrChannelCapExceeded is returned when a channel already holds the
	// configured maximum number of open (non-expired) discovered videos.
	ErrChannelCapExceeded = errors.New("channel discovery cap exceeded")
)
