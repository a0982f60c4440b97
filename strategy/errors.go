package strategy

import "errors"

// ErrNoFreeSeats indicates that students need seats but none are free.
var ErrNoFreeSeats = errors.New("no free seats available")
