package message

import (
	"errors"
	"fmt"

	"github.com/miekg/dns"
)

// ErrMessageTooLarge is the cause of an EncodeError for a message whose wire
// form exceeds the encode buffer.
var ErrMessageTooLarge = errors.New("message exceeds buffer capacity")

// DecodeError reports malformed or truncated wire data.
type DecodeError struct {
	Len int // number of bytes offered to the decoder
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%d bytes: %v", e.Len, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a message that could not be packed.
type EncodeError struct {
	Len   int // packed length, set when the limit was exceeded
	Limit int
	Err   error
}

func (e *EncodeError) Error() string {
	if errors.Is(e.Err, ErrMessageTooLarge) {
		return fmt.Sprintf("%v (%d > %d)", e.Err, e.Len, e.Limit)
	}
	return e.Err.Error()
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DnsError is a failure signaled by a server inside a well-formed response.
type DnsError struct {
	Rcode int
}

func (e *DnsError) Error() string {
	if s, ok := dns.RcodeToString[e.Rcode]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", e.Rcode)
}
