package store

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrSlotTaken  = errors.New("slot already booked")
)
