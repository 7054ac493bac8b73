//go:build !unix

package engine

import (
	"log/slog"
	"net"
)

func listen(string, int, *slog.Logger) (int, *net.TCPAddr, error) {
	return -1, nil, ErrUnsupportedPlatform
}

func newPoller() (poller, error) {
	return nil, ErrUnsupportedPlatform
}

func acceptFD(int) (int, string, error) {
	return -1, "", ErrUnsupportedPlatform
}

func readFD(int, []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func writeFD(int, []byte) (int, error) {
	return 0, ErrUnsupportedPlatform
}

func closeFD(int) error {
	return nil
}

func isTemporary(error) bool {
	return false
}
