package time

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timeout measures the amount of time left for some event. It can be thought of
// as a passive timer.
type Timeout struct {
	clock     clockwork.Clock
	duration  time.Duration
	timestamp time.Time
}

func (ht *Timeout) String() string {
	return fmt.Sprintf("Timeout(left:%v, duration:%v)",
		ht.Remaining(),
		ht.duration)
}

// NewTimeout get a new timeout struct with a given duration measured on clock.
func NewTimeout(clock clockwork.Clock, duration time.Duration) *Timeout {
	return &Timeout{
		clock:     clock,
		duration:  duration,
		timestamp: clock.Now(),
	}
}

// NewTimeoutSec get a new timeout struct with a duration specified in seconds. The
// precision of the timeout value is still based on base time.Duration
func NewTimeoutSec(clock clockwork.Clock, seconds int) *Timeout {
	return NewTimeout(clock, time.Duration(seconds)*time.Second)
}

// Reset resets the timeout value to the new duration.
func (ht *Timeout) Reset(duration time.Duration) {
	ht.duration = duration
	ht.timestamp = ht.clock.Now()
}

// ResetSec resets the timeout value to the new number of seconds.
func (ht *Timeout) ResetSec(seconds int) {
	ht.Reset(time.Duration(seconds) * time.Second)
}

// ExpiresAt returns the time.Time at which this timeout expires.
func (ht *Timeout) ExpiresAt() time.Time {
	return ht.timestamp.Add(ht.duration)
}

// IsExpired returns true if the timeout has expired.
func (ht *Timeout) IsExpired() bool {
	return ht.Remaining() <= 0
}

// Remaining returns the duration left before the timeout expires.
func (ht *Timeout) Remaining() time.Duration {
	left := ht.duration - ht.clock.Since(ht.timestamp)
	if left <= 0 {
		return 0
	}
	return left
}

// RemainingSec returns the number of seconds left before the timeout expires.
func (ht *Timeout) RemainingSec() int {
	return int(ht.Remaining() / time.Second)
}
