package shoot

import "errors"

var (
	ErrNotFound       = errors.New("shoot not found")
	ErrInvalidPayload = errors.New("invalid shoot payload")
	ErrInvalidDates   = errors.New("end time must be after start time")
)
