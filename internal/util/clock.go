package util

import "time"

// Clock abstracts wall-clock access so time-dependent behavior (OTP expiry,
// fallback time/date responses) can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
