package room

import "time"

// timerHandle wraps a time.Timer with a nil-safe Stop. Stopping is best
// effort: a callback already in flight is rejected by the round-token check
// in the manager, not by Stop.
type timerHandle struct {
	timer *time.Timer
}

func afterFunc(d time.Duration, fn func()) *timerHandle {
	return &timerHandle{timer: time.AfterFunc(d, fn)}
}

func (t *timerHandle) Stop() {
	if t != nil && t.timer != nil {
		t.timer.Stop()
	}
}
