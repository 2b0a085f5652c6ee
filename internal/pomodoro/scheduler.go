package pomodoro

import "time"

// ChannelScheduler times callbacks with time.AfterFunc and hands each due
// callback to C. The event loop that owns the session receives from C and
// runs the callback itself, so session state is never touched off-loop.
type ChannelScheduler struct {
	C chan func()
}

func NewChannelScheduler() *ChannelScheduler {
	return &ChannelScheduler{C: make(chan func(), 4)}
}

func (s *ChannelScheduler) Schedule(d time.Duration, fire func()) Timer {
	return afterTimer{time.AfterFunc(d, func() { s.C <- fire })}
}

type afterTimer struct{ t *time.Timer }

func (a afterTimer) Stop() { a.t.Stop() }
