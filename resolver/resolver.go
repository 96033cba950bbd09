package resolver

import (
	"context"
	"net"
	"time"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
	"github.com/treemana/dnsock/socket"
)

const (
	defaultTimeout  = 2 * time.Second
	defaultAttempts = 3
)

type Config struct {
	Timeout  time.Duration // per attempt, default 2s
	Attempts int           // default 3
}

// Client runs query/response exchanges over one socket. Like the socket,
// it must not be used by more than one goroutine at a time.
type Client struct {
	sock *socket.Socket
	cfg  Config
}

func New(sock *socket.Socket, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	return &Client{sock: sock, cfg: cfg}
}

// Exchange sends q to server and waits for the matching response, resending
// after each timeout. Datagrams from other senders and responses to other
// queries are skipped. A response carrying an error rcode is returned along
// with a socket.Error of kind socket.KindDns.
func (c *Client) Exchange(ctx context.Context, q *message.Message, server *net.UDPAddr) (*message.Message, error) {
	conn := c.sock.Get()
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	// wake a blocked read on cancellation
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	buf := message.NewBuffer()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.attempt(ctx, q, server, buf)
		if err == nil {
			log.Sugar.Debugf("%s id=%d response in %s, attempt %d", server, q.ID(), time.Since(start), attempt)
			if rerr := resp.Err(); rerr != nil {
				return resp, socket.Wrap(rerr)
			}
			return resp, nil
		}

		if !socket.IsTimeout(err) {
			log.Sugar.Errorf("%s id=%d error=[%+v]", server, q.ID(), err)
			return nil, err
		}

		log.Sugar.Infof("%s id=%d timeout, attempt %d/%d", server, q.ID(), attempt, c.cfg.Attempts)
		lastErr = err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, q *message.Message, server *net.UDPAddr, buf []byte) (*message.Message, error) {
	if err := c.sock.SendMessage(q, server); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.sock.Get().SetReadDeadline(deadline); err != nil {
		return nil, socket.FromIOError(err)
	}

	// cancelled between the check in Exchange and the deadline above
	if ctx.Err() != nil {
		return nil, socket.FromIOError(context.DeadlineExceeded)
	}

	for {
		resp, err := c.sock.RecvMessage(server, buf)
		if err != nil {
			return nil, err
		}

		if resp == nil {
			continue
		}

		if !resp.IsResponseTo(q) {
			log.Sugar.Info("unmatched request and response")
			continue
		}

		return resp, nil
	}
}
