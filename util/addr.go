package util

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// IPEqual compares two IPs after unmapping IPv4-mapped IPv6 addresses, so
// 192.0.2.1 and ::ffff:192.0.2.1 are equal. Zones must match.
func IPEqual(a, b net.IP, zoneA, zoneB string) bool {
	aa, ok := netip.AddrFromSlice(a)
	if !ok {
		return false
	}

	ab, ok := netip.AddrFromSlice(b)
	if !ok {
		return false
	}

	return aa.Unmap().WithZone(zoneA) == ab.Unmap().WithZone(zoneB)
}

// SocketAddrEqual reports whether a and b name the same UDP endpoint.
// Dual-stack sockets report IPv4 peers in IPv4-mapped form, so plain ==
// on the address bytes is not enough.
func SocketAddrEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Port != b.Port {
		return false
	}

	return IPEqual(a.IP, b.IP, a.Zone, b.Zone)
}

// ResolveUDPAddrs turns host:port into every candidate UDP address. A literal
// IP yields a single address; a hostname yields one per resolved IP.
func ResolveUDPAddrs(ctx context.Context, address string) ([]*net.UDPAddr, error) {
	host, service, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	port, err := net.DefaultResolver.LookupPort(ctx, "udp", service)
	if err != nil {
		return nil, err
	}

	if len(host) == 0 {
		return []*net.UDPAddr{{Port: port}}, nil
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		return []*net.UDPAddr{{IP: ip.AsSlice(), Port: port, Zone: ip.Zone()}}, nil
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}

	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses for host %s", host)
	}

	var addrs = make([]*net.UDPAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, &net.UDPAddr{IP: ip.IP, Port: port, Zone: ip.Zone})
	}

	return addrs, nil
}
