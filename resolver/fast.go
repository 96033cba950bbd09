package resolver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
	"github.com/treemana/dnsock/util"
)

var ErrNoServer = errors.New("no server answered")

// Fastest sends q to every server in turn and returns the one that answered
// quickest, with its round trip time. Servers that fail or time out are
// skipped; duplicates (after address normalization) are probed once.
func (c *Client) Fastest(ctx context.Context, q *message.Message, servers []*net.UDPAddr) (*net.UDPAddr, time.Duration, error) {
	var (
		fast   *net.UDPAddr
		min    time.Duration
		probed = make([]*net.UDPAddr, 0, len(servers))
	)

	for _, server := range servers {
		if containsAddr(probed, server) {
			continue
		}
		probed = append(probed, server)

		start := time.Now()
		// an error rcode still counts as an answer
		resp, err := c.Exchange(ctx, q, server)
		if resp == nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			log.Sugar.Warnf("%s probe error=[%+v]", server, err)
			continue
		}
		elapse := time.Since(start)

		if fast != nil && elapse >= min {
			continue
		}

		fast = server
		min = elapse
	}

	if fast == nil {
		return nil, 0, ErrNoServer
	}

	log.Sugar.Infof("fastest server %s, cost %s", fast, min)
	return fast, min, nil
}

func containsAddr(addrs []*net.UDPAddr, addr *net.UDPAddr) bool {
	for _, a := range addrs {
		if util.SocketAddrEqual(a, addr) {
			return true
		}
	}
	return false
}
