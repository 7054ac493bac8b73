//go:build unix

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

const maxPort = 65535

// listen opens a non-blocking listening socket. A port already in use is
// retried with the next one until maxPort.
func listen(host string, port int, log *slog.Logger) (int, *net.TCPAddr, error) {
	ip, err := resolveHost(host)
	if err != nil {
		return -1, nil, err
	}
	domain := unix.AF_INET
	if ip.To4() == nil {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, nil, fmt.Errorf("opening socket: %w", err)
	}
	if err := configureSocket(fd); err != nil {
		_ = unix.Close(fd)
		return -1, nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("setting SO_REUSEADDR: %w", err)
	}

	for {
		err = unix.Bind(fd, sockaddr(ip, port))
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EADDRINUSE) || port == 0 || port >= maxPort {
			_ = unix.Close(fd)
			if errors.Is(err, unix.EADDRINUSE) {
				return -1, nil, fmt.Errorf("%w: last tried %s", ErrBindFailure, net.JoinHostPort(ip.String(), strconv.Itoa(port)))
			}
			return -1, nil, fmt.Errorf("binding %s: %w", net.JoinHostPort(ip.String(), strconv.Itoa(port)), err)
		}
		log.Debug("port in use, trying next", "port", port)
		port++
	}

	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("listening: %w", err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return -1, nil, fmt.Errorf("reading bound address: %w", err)
	}
	return fd, tcpAddr(sa), nil
}

func resolveHost(host string) (net.IP, error) {
	if host == "" {
		return net.IPv4zero, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	addr, err := net.ResolveIPAddr("ip", host)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", host, err)
	}
	return addr.IP, nil
}

func sockaddr(ip net.IP, port int) unix.Sockaddr {
	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip4)
		return sa
	}
	sa := &unix.SockaddrInet6{Port: port}
	copy(sa.Addr[:], ip.To16())
	return sa
}

func tcpAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(sa.Addr[:]).To4(), Port: sa.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(sa.Addr[:]), Port: sa.Port}
	}
	return nil
}

func configureSocket(fd int) error {
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("setting non-blocking mode: %w", err)
	}
	return nil
}

func acceptFD(lfd int) (int, string, error) {
	fd, sa, err := unix.Accept(lfd)
	if err != nil {
		return -1, "", err
	}
	if err := configureSocket(fd); err != nil {
		_ = unix.Close(fd)
		return -1, "", err
	}
	remote := ""
	if addr := tcpAddr(sa); addr != nil {
		remote = addr.String()
	}
	return fd, remote, nil
}

func readFD(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}

func writeFD(fd int, b []byte) (int, error) {
	return unix.Write(fd, b)
}

func closeFD(fd int) error {
	return unix.Close(fd)
}

// isTemporary reports errors that only mean "try again later".
func isTemporary(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.ECONNABORTED)
}
