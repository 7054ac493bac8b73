//go:build unix && !linux

package engine

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// pollPoller is the poll(2) fallback for Unix systems without epoll.
type pollPoller struct {
	fds   []unix.PollFd
	index map[int]int
}

func newPoller() (poller, error) {
	return &pollPoller{index: make(map[int]int)}, nil
}

func pollMask(writable bool) int16 {
	if writable {
		return unix.POLLOUT
	}
	return unix.POLLIN
}

func (p *pollPoller) add(fd int, writable bool) error {
	if _, ok := p.index[fd]; ok {
		return unix.EEXIST
	}
	p.index[fd] = len(p.fds)
	p.fds = append(p.fds, unix.PollFd{Fd: int32(fd), Events: pollMask(writable)})
	return nil
}

func (p *pollPoller) modify(fd int, writable bool) error {
	i, ok := p.index[fd]
	if !ok {
		return unix.ENOENT
	}
	p.fds[i].Events = pollMask(writable)
	return nil
}

func (p *pollPoller) remove(fd int) error {
	i, ok := p.index[fd]
	if !ok {
		return unix.ENOENT
	}
	last := len(p.fds) - 1
	p.fds[i] = p.fds[last]
	p.index[int(p.fds[i].Fd)] = i
	p.fds = p.fds[:last]
	delete(p.index, fd)
	return nil
}

func (p *pollPoller) wait(events []event, timeout time.Duration) ([]event, error) {
	n, err := unix.Poll(p.fds, timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return events, nil
		}
		return events, err
	}
	for i := 0; i < len(p.fds) && n > 0; i++ {
		re := p.fds[i].Revents
		if re == 0 {
			continue
		}
		n--
		events = append(events, event{
			fd:       int(p.fds[i].Fd),
			readable: re&(unix.POLLIN|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0,
			writable: re&unix.POLLOUT != 0,
		})
	}
	return events, nil
}

func (p *pollPoller) close() error {
	p.fds = nil
	clear(p.index)
	return nil
}
