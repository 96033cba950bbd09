package udp

import (
	"errors"
	"net"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
)

func (s *Server) read() {
	buf := message.NewBuffer()
	for {
		q, remote, err := s.sock.RecvFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || !s.status.Load() {
				log.Sugar.Warn("server read connection closed")
				break
			}
			log.Sugar.Error("server read error : ", err)
			continue
		}

		sn := s.serial.Add(1)
		log.Sugar.Debugf("sn=%d, id=%d, from %s", sn, q.ID(), remote)

		s.write(sn, remote, s.handler(sn, q, remote))
	}
}
