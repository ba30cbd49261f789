package clock

import "time"

type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant. Used by tests and one-shot tools.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f).UTC() }
