package message

import (
	"net"

	"github.com/miekg/dns"
)

// NewReply builds a response to q carrying rcode and the given answers.
func NewReply(q *Message, rcode int, answer ...dns.RR) *Message {
	if q == nil {
		return nil
	}

	var resp = new(dns.Msg)
	resp.SetRcode(q.msg, rcode)
	resp.RecursionAvailable = true
	resp.AuthenticatedData = false
	resp.Answer = answer

	return &Message{msg: resp}
}

// AnswerIPs returns the addresses carried by A and AAAA answers.
func (m *Message) AnswerIPs() []net.IP {
	var ips []net.IP
	for _, rr := range m.msg.Answer {
		switch rr := rr.(type) {
		case *dns.A:
			ips = append(ips, rr.A.To4())
		case *dns.AAAA:
			ips = append(ips, rr.AAAA)
		}
	}
	return ips
}

// SetUDPSize advertises size as the EDNS0 payload size, adding an OPT record
// when the message has none.
func (m *Message) SetUDPSize(size uint16) {
	if size < dns.MinMsgSize {
		size = dns.MinMsgSize
	}

	if opt := m.msg.IsEdns0(); opt != nil {
		opt.SetUDPSize(size)
		return
	}

	var opt = &dns.OPT{
		Hdr: dns.RR_Header{Name: ".", Rrtype: dns.TypeOPT},
	}
	opt.SetUDPSize(size)
	m.msg.Extra = append(m.msg.Extra, opt)
}

// UDPSize returns the advertised EDNS0 payload size, or 0 without EDNS0.
func (m *Message) UDPSize() uint16 {
	if opt := m.msg.IsEdns0(); opt != nil {
		return opt.UDPSize()
	}
	return 0
}
