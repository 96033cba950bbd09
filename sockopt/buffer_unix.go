//go:build unix

package sockopt

import (
	"net"

	"golang.org/x/sys/unix"
)

// SetBuffers sets the kernel receive and send buffer sizes. A size of zero
// leaves that buffer alone.
func SetBuffers(conn *net.UDPConn, rcv, snd int) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var serr error
	err = raw.Control(func(fd uintptr) {
		if rcv > 0 {
			if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, rcv); serr != nil {
				return
			}
		}
		if snd > 0 {
			serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, snd)
		}
	})
	if err != nil {
		return err
	}

	return serr
}

// Buffers returns the kernel receive and send buffer sizes as reported by
// the OS, which may differ from what was set.
func Buffers(conn *net.UDPConn) (rcv, snd int, err error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, 0, err
	}

	var serr error
	err = raw.Control(func(fd uintptr) {
		if rcv, serr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF); serr != nil {
			return
		}
		snd, serr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF)
	})
	if err != nil {
		return 0, 0, err
	}

	return rcv, snd, serr
}
