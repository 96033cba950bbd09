package udp

import (
	"net"

	"github.com/treemana/dnsock/log"
	"github.com/treemana/dnsock/message"
)

func (s *Server) write(sn uint64, remote *net.UDPAddr, replies []*message.Message) {
	if len(replies) == 0 {
		log.Sugar.Debugf("sn=%d dropped", sn)
		return
	}

	for _, reply := range replies {
		if err := s.sock.SendMessage(reply, remote); err != nil {
			// keep going, the next reply may still fit
			log.Sugar.Errorf("sn=%d, udp connection write error=[%+v]", sn, err)
			continue
		}
		log.Sugar.Debugf("sn=%d, id=%d, answer %d", sn, reply.ID(), len(reply.Msg().Answer))
	}
}
