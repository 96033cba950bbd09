// Package message is the DNS wire codec used by the socket layer.
//
// A Message decoded from the wire keeps a reference to the bytes it was
// decoded from. Those bytes belong to the caller's buffer, so the buffer must
// not be reused while the Message is still in use.
package message

import (
	"strings"

	"github.com/miekg/dns"
)

// MessageLimit is the maximum size of an encoded message, in either direction.
// Receive buffers should be allocated at exactly this size.
const MessageLimit = dns.MaxMsgSize

// NewBuffer returns a scratch buffer of MessageLimit bytes.
func NewBuffer() []byte {
	return make([]byte, MessageLimit)
}

type Message struct {
	msg *dns.Msg
	raw []byte // wire bytes the message was decoded from, borrowed
}

// NewQuery returns a recursion-desired query for name with a random ID.
func NewQuery(name string, qtype uint16) *Message {
	var m = new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	return &Message{msg: m}
}

func FromMsg(m *dns.Msg) *Message {
	return &Message{msg: m}
}

// Decode parses data. The returned Message borrows data.
func Decode(data []byte) (*Message, error) {
	var m = new(dns.Msg)
	if err := m.Unpack(data); err != nil {
		return nil, &DecodeError{Len: len(data), Err: err}
	}
	return &Message{msg: m, raw: data}, nil
}

// Encode packs the message into buf and returns the encoded prefix of buf.
// A message whose wire form does not fit in len(buf) bytes is rejected.
func (m *Message) Encode(buf []byte) ([]byte, error) {
	data, err := m.msg.PackBuffer(buf)
	if err != nil {
		return nil, &EncodeError{Err: err}
	}

	if len(data) > len(buf) {
		return nil, &EncodeError{Len: len(data), Limit: len(buf), Err: ErrMessageTooLarge}
	}

	// PackBuffer may have packed into a scratch slice of its own
	n := copy(buf, data)
	return buf[:n], nil
}

func (m *Message) Msg() *dns.Msg { return m.msg }
func (m *Message) ID() uint16    { return m.msg.Id }

// Raw returns the wire bytes the message was decoded from, or nil when the
// message was built locally.
func (m *Message) Raw() []byte { return m.raw }

// Err returns a *DnsError when the message carries a non-success rcode.
func (m *Message) Err() error {
	if m.msg.Rcode == dns.RcodeSuccess {
		return nil
	}
	return &DnsError{Rcode: m.msg.Rcode}
}

// IsResponseTo reports whether m answers the query q: same ID, QR bit set and
// the same question section.
func (m *Message) IsResponseTo(q *Message) bool {
	if q == nil || m.msg.Id != q.msg.Id || !m.msg.Response {
		return false
	}

	if len(m.msg.Question) != len(q.msg.Question) {
		return false
	}

	for i, question := range q.msg.Question {
		got := m.msg.Question[i]
		if got.Qtype != question.Qtype || got.Qclass != question.Qclass {
			return false
		}
		if !strings.EqualFold(got.Name, question.Name) {
			return false
		}
	}

	return true
}

func (m *Message) String() string {
	return m.msg.String()
}
