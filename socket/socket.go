// Package socket sends and receives DNS messages over UDP.
//
// A Socket owns one bound UDP connection and performs no locking: use it
// from one goroutine at a time, or give each goroutine its own Socket.
// Receives block until a datagram arrives unless a deadline is set through
// Get; the resulting error then reports IsTimeout.
package socket

import (
	"context"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
	"github.com/treemana/dnsock/util"
)

type Socket struct {
	conn *net.UDPConn

	logger *zap.Logger
	noise  *zap.Logger // sampled, for datagrams from unexpected senders
}

// New returns a Socket bound to the unspecified address on an ephemeral port.
func New() (*Socket, error) {
	return BindUDPAddr(&net.UDPAddr{IP: net.IPv6unspecified})
}

// Bind returns a Socket bound to address, given as host:port. A hostname may
// resolve to several addresses; the first one that binds is used.
func Bind(address string) (*Socket, error) {
	addrs, err := util.ResolveUDPAddrs(context.Background(), address)
	if err != nil {
		return nil, FromIOError(err)
	}

	var lastErr error
	for _, addr := range addrs {
		var s *Socket
		if s, lastErr = BindUDPAddr(addr); lastErr == nil {
			return s, nil
		}
	}

	return nil, lastErr
}

func BindUDPAddr(addr *net.UDPAddr) (*Socket, error) {
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		log.Logger.Debug("udp bind failed", zap.Stringer("addr", addr), zap.Error(err))
		return nil, FromIOError(err)
	}

	s := &Socket{conn: conn}
	s.setLogger(log.Logger)
	s.logger.Debug("udp socket bound", zap.Stringer("local", conn.LocalAddr()))

	return s, nil
}

// WithLogger replaces the logger captured from the log package at bind time.
func (s *Socket) WithLogger(l *zap.Logger) *Socket {
	s.setLogger(l)
	return s
}

func (s *Socket) setLogger(l *zap.Logger) {
	s.logger = l
	s.noise = log.Sampled(l)
}

// Get returns the underlying connection, e.g. for deadlines or socket
// options. The Socket keeps ownership of it.
func (s *Socket) Get() *net.UDPConn {
	return s.conn
}

func (s *Socket) LocalAddr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

func (s *Socket) Close() error {
	s.logger.Debug("udp socket closing", zap.Stringer("local", s.conn.LocalAddr()))
	return s.conn.Close()
}

// SendMessage encodes m and sends it to addr as a single datagram.
func (s *Socket) SendMessage(m *message.Message, addr net.Addr) error {
	buf := make([]byte, message.MessageLimit)
	data, err := m.Encode(buf)
	if err != nil {
		return Wrap(err)
	}

	n, err := s.conn.WriteTo(data, addr)
	if err != nil {
		s.logger.Debug("udp send failed", zap.Stringer("to", addr), zap.Error(err))
		return FromIOError(err)
	}

	if n != len(data) {
		return FromIOError(io.ErrShortWrite)
	}

	return nil
}

// SendMessageTo resolves address (host:port) and sends m to the first
// address it resolves to.
func (s *Socket) SendMessageTo(m *message.Message, address string) error {
	addrs, err := util.ResolveUDPAddrs(context.Background(), address)
	if err != nil {
		return FromIOError(err)
	}
	return s.SendMessage(m, addrs[0])
}

// RecvFrom receives one message and returns it with the sender's address.
// buf should be message.MessageLimit bytes long; the returned message
// borrows from it.
func (s *Socket) RecvFrom(buf []byte) (*message.Message, *net.UDPAddr, error) {
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, FromIOError(err)
	}

	m, err := message.Decode(buf[:n])
	if err != nil {
		s.logger.Debug("undecodable datagram", zap.Stringer("from", addr), zap.Int("len", n), zap.Error(err))
		return nil, nil, Wrap(err)
	}

	return m, addr, nil
}

// RecvMessage receives one datagram and decodes it only if it came from addr.
// A datagram from any other sender is dropped and (nil, nil) is returned, so
// callers loop until they get a message or an error.
//
// buf should be message.MessageLimit bytes long; the returned message
// borrows from it.
func (s *Socket) RecvMessage(addr *net.UDPAddr, buf []byte) (*message.Message, error) {
	n, from, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, FromIOError(err)
	}

	if !util.SocketAddrEqual(from, addr) {
		s.noise.Debug("datagram from unexpected sender dropped",
			zap.Stringer("from", from), zap.Stringer("expected", addr), zap.Int("len", n))
		return nil, nil
	}

	m, err := message.Decode(buf[:n])
	if err != nil {
		s.logger.Debug("undecodable datagram", zap.Stringer("from", from), zap.Int("len", n), zap.Error(err))
		return nil, Wrap(err)
	}

	return m, nil
}
