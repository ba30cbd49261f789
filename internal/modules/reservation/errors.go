package reservation

import "errors"

var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidPayload = errors.New("invalid_payload")
	ErrNoAvailability = errors.New("no availability for requested period")
	ErrAlreadyStarted = errors.New("reservation already started")
	ErrInternal       = errors.New("internal error")
)
