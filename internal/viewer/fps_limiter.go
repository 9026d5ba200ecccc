package viewer

import "time"

// fpsLimiter provides high-precision frame rate limiting for the render
// loop. Uses a hybrid sleep/spin approach for better precision than a plain
// timer at higher caps.
type fpsLimiter struct {
	next time.Time
}

// Wait blocks until the next frame should start for the given target rate.
// A non-positive limit disables pacing and resets the schedule.
func (f *fpsLimiter) Wait(limit int) {
	if limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(limit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., a load hitch), resync to avoid drift
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
