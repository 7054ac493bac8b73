//go:build linux

package engine

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

type epoller struct {
	fd  int
	buf []unix.EpollEvent
}

func newPoller() (poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epoller{fd: fd, buf: make([]unix.EpollEvent, 64)}, nil
}

func epollMask(writable bool) uint32 {
	if writable {
		return unix.EPOLLOUT
	}
	return unix.EPOLLIN
}

func (p *epoller) add(fd int, writable bool) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: epollMask(writable), Fd: int32(fd)})
}

func (p *epoller) modify(fd int, writable bool) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{Events: epollMask(writable), Fd: int32(fd)})
}

func (p *epoller) remove(fd int) error {
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epoller) wait(events []event, timeout time.Duration) ([]event, error) {
	n, err := unix.EpollWait(p.fd, p.buf, timeoutMillis(timeout))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return events, nil
		}
		return events, err
	}
	for _, e := range p.buf[:n] {
		events = append(events, event{
			fd:       int(e.Fd),
			readable: e.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0,
			writable: e.Events&unix.EPOLLOUT != 0,
		})
	}
	return events, nil
}

func (p *epoller) close() error {
	return unix.Close(p.fd)
}
