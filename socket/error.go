package socket

import (
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/treemana/dnsock/message"
)

// Kind classifies the cause carried by an Error.
type Kind uint8

const (
	KindDecode Kind = iota // received data could not be decoded
	KindEncode             // message could not be encoded
	KindDns                // server responded with an error
	KindIO                 // network operation failed
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	case KindDns:
		return "dns"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Socket operations. It carries
// exactly one cause; Unwrap exposes it to errors.As and errors.Is.
type Error struct {
	kind Kind
	err  error
}

func FromDecodeError(err *message.DecodeError) *Error {
	return &Error{kind: KindDecode, err: err}
}

func FromEncodeError(err *message.EncodeError) *Error {
	return &Error{kind: KindEncode, err: err}
}

func FromDnsError(err *message.DnsError) *Error {
	return &Error{kind: KindDns, err: err}
}

func FromIOError(err error) *Error {
	return &Error{kind: KindIO, err: err}
}

// Wrap classifies err by the codec error it carries, treating anything else
// as a network failure. An *Error is returned as is.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*Error); ok {
		return e
	}

	var (
		de  *message.DecodeError
		ee  *message.EncodeError
		dne *message.DnsError
	)
	switch {
	case errors.As(err, &de):
		return FromDecodeError(de)
	case errors.As(err, &ee):
		return FromEncodeError(ee)
	case errors.As(err, &dne):
		return FromDnsError(dne)
	default:
		return FromIOError(err)
	}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	switch e.kind {
	case KindDecode:
		return "error decoding message: " + e.err.Error()
	case KindEncode:
		return "error encoding message: " + e.err.Error()
	case KindDns:
		return "server responded with error: " + e.err.Error()
	default:
		return e.err.Error()
	}
}

// IsTimeout reports whether the operation timed out or would have blocked.
// Only network failures are ever timeouts.
func (e *Error) IsTimeout() bool {
	if e == nil || e.kind != KindIO {
		return false
	}

	if errors.Is(e.err, os.ErrDeadlineExceeded) ||
		errors.Is(e.err, syscall.ETIMEDOUT) ||
		errors.Is(e.err, syscall.EAGAIN) ||
		errors.Is(e.err, syscall.EWOULDBLOCK) {
		return true
	}

	var ne net.Error
	return errors.As(e.err, &ne) && ne.Timeout()
}

// IsTimeout reports whether err is an *Error for which IsTimeout is true.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsTimeout()
}
