// Package sockopt sets OS-level options on the connection behind a
// socket.Socket, reached through Socket.Get.
package sockopt

import (
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// SetTTL sets the unicast TTL, or the hop limit when the connection only
// speaks IPv6.
func SetTTL(conn *net.UDPConn, ttl int) error {
	err := ipv4.NewPacketConn(conn).SetTTL(ttl)
	if err == nil {
		return nil
	}

	if err = ipv6.NewPacketConn(conn).SetHopLimit(ttl); err != nil {
		return err
	}

	return nil
}

func TTL(conn *net.UDPConn) (int, error) {
	ttl, err := ipv4.NewPacketConn(conn).TTL()
	if err == nil {
		return ttl, nil
	}

	return ipv6.NewPacketConn(conn).HopLimit()
}
