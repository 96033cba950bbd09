//go:build !unix

package sockopt

import (
	"errors"
	"net"
)

var errUnsupported = errors.New("socket buffer options are not supported on this platform")

func SetBuffers(conn *net.UDPConn, rcv, snd int) error {
	if rcv > 0 {
		if err := conn.SetReadBuffer(rcv); err != nil {
			return err
		}
	}
	if snd > 0 {
		return conn.SetWriteBuffer(snd)
	}
	return nil
}

func Buffers(conn *net.UDPConn) (rcv, snd int, err error) {
	return 0, 0, errUnsupported
}
