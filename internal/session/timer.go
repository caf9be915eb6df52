package session

import "time"

// scheduledReply is the delayed display of a successful backend reply.
// It is cancellable so session teardown (and, later, a "stop
// generating" control) can drop a reply that has not fired yet.
type scheduledReply struct {
	timer *time.Timer
}

func schedule(d time.Duration, fn func()) *scheduledReply {
	return &scheduledReply{timer: time.AfterFunc(d, fn)}
}

// Cancel stops the task if it has not fired; it reports whether the
// firing was prevented.
func (t *scheduledReply) Cancel() bool {
	return t.timer.Stop()
}
