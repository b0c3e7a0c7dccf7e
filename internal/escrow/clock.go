package escrow

import "time"

// Clock abstracts the current time so the timeout paths are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
