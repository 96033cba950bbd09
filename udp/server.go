// Package udp runs a small DNS responder on top of socket.Socket. It answers
// each query through a Handler, one datagram at a time.
package udp

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
	"github.com/treemana/dnsock/socket"
)

// Handler returns the replies for the sn-th query, sent in order to the
// querier. Returning nil drops the query.
type Handler func(sn uint64, q *message.Message, from *net.UDPAddr) []*message.Message

type Server struct {
	sock    *socket.Socket
	handler Handler
	status  atomic.Bool // running status

	wg     sync.WaitGroup
	serial atomic.Uint64
}

func New(address string, handler Handler) (*Server, error) {
	if handler == nil {
		return nil, errors.New("nil handler")
	}

	sock, err := socket.Bind(address)
	if err != nil {
		log.Sugar.Errorf("server udp [%s] listen error=[%+v]", address, err)
		return nil, err
	}

	return &Server{sock: sock, handler: handler}, nil
}

func (s *Server) Addr() *net.UDPAddr {
	return s.sock.LocalAddr()
}

// Served returns the number of queries received so far.
func (s *Server) Served() uint64 {
	return s.serial.Load()
}

func (s *Server) Start() {
	s.status.Store(true)

	s.wg.Add(1)
	go func() {
		s.read()
		s.wg.Done()
	}()

	log.Sugar.Infof("server running on %s ...", s.Addr())
}

// Stop closes the socket and waits for the read loop to exit.
func (s *Server) Stop() error {
	log.Sugar.Info("server stopping")
	s.status.Store(false)

	err := s.sock.Close()
	s.wg.Wait()

	log.Sugar.Infof("server stopped, serial=%d", s.serial.Load())
	return err
}
