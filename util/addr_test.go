package util

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketAddrEqual(t *testing.T) {
	tests := []struct {
		name string
		a    *net.UDPAddr
		b    *net.UDPAddr
		want bool
	}{
		{
			name: "same ipv4",
			a:    &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1).To4(), Port: 53},
			b:    &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1).To4(), Port: 53},
			want: true,
		},
		{
			name: "ipv4 and ipv4-mapped ipv6",
			a:    &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1).To4(), Port: 53},
			b:    &net.UDPAddr{IP: net.ParseIP("::ffff:192.0.2.1").To16(), Port: 53},
			want: true,
		},
		{
			name: "ipv4-mapped ipv6 and ipv4",
			a:    &net.UDPAddr{IP: net.ParseIP("::ffff:127.0.0.1").To16(), Port: 5300},
			b:    &net.UDPAddr{IP: net.ParseIP("127.0.0.1").To4(), Port: 5300},
			want: true,
		},
		{
			name: "different port",
			a:    &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 53},
			b:    &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 54},
			want: false,
		},
		{
			name: "different ip",
			a:    &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 53},
			b:    &net.UDPAddr{IP: net.ParseIP("192.0.2.2"), Port: 53},
			want: false,
		},
		{
			name: "ipv4 and ipv4-compatible ipv6",
			a:    &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 53},
			b:    &net.UDPAddr{IP: net.ParseIP("::c000:201"), Port: 53},
			want: false,
		},
		{
			name: "ipv6",
			a:    &net.UDPAddr{IP: net.ParseIP("2001:db8::1"), Port: 53},
			b:    &net.UDPAddr{IP: net.ParseIP("2001:db8:0:0::1"), Port: 53},
			want: true,
		},
		{
			name: "ipv6 zones differ",
			a:    &net.UDPAddr{IP: net.ParseIP("fe80::1"), Port: 53, Zone: "eth0"},
			b:    &net.UDPAddr{IP: net.ParseIP("fe80::1"), Port: 53, Zone: "eth1"},
			want: false,
		},
		{
			name: "nil ip",
			a:    &net.UDPAddr{Port: 53},
			b:    &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 53},
			want: false,
		},
		{
			name: "nil address",
			a:    nil,
			b:    &net.UDPAddr{IP: net.ParseIP("192.0.2.1"), Port: 53},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SocketAddrEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, SocketAddrEqual(tt.b, tt.a))
		})
	}
}

func TestResolveUDPAddrs(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    []*net.UDPAddr
		wantErr bool
	}{
		{
			name:    "ipv4 literal",
			address: "127.0.0.1:53",
			want:    []*net.UDPAddr{{IP: net.IPv4(127, 0, 0, 1).To4(), Port: 53}},
		},
		{
			name:    "ipv6 literal",
			address: "[::1]:5353",
			want:    []*net.UDPAddr{{IP: net.IPv6loopback, Port: 5353}},
		},
		{
			name:    "wildcard host",
			address: ":0",
			want:    []*net.UDPAddr{{Port: 0}},
		},
		{
			name:    "named service",
			address: "127.0.0.1:domain",
			want:    []*net.UDPAddr{{IP: net.IPv4(127, 0, 0, 1).To4(), Port: 53}},
		},
		{
			name:    "missing port",
			address: "127.0.0.1",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveUDPAddrs(context.Background(), tt.address)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUDPAddrsHostname(t *testing.T) {
	addrs, err := ResolveUDPAddrs(context.Background(), "localhost:53")
	if err != nil {
		t.Skipf("localhost does not resolve here: %v", err)
	}

	require.NotEmpty(t, addrs)
	for _, addr := range addrs {
		assert.True(t, addr.IP.IsLoopback(), "%s is not loopback", addr)
		assert.Equal(t, 53, addr.Port)
	}
}
