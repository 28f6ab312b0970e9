package engine

import "time"

// Clock supplies "today" to the notification and ranking rules. It is
// injected rather than read globally so those rules stay deterministic
// under test.
type Clock interface {
	Now() time.Time
	Today() Date
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
func (SystemClock) Today() Date    { return DateOf(time.Now().UTC()) }

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }
func (c FixedClock) Today() Date    { return DateOf(c.At) }
