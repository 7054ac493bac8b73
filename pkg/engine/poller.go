package engine

import "time"

// event reports one ready descriptor. Errors and hangups are reported as
// readable so the next read observes them.
type event struct {
	fd       int
	readable bool
	writable bool
}

// poller waits for socket readiness. Descriptors watch either reads or
// writes, never both.
type poller interface {
	add(fd int, writable bool) error
	modify(fd int, writable bool) error
	remove(fd int) error
	wait(events []event, timeout time.Duration) ([]event, error)
	close() error
}

// timeoutMillis converts a poll timeout; a negative timeout waits forever.
func timeoutMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms == 0 && d > 0 {
		ms = 1
	}
	return int(ms)
}
