package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport: the request never produced an HTTP response.
	KindTransport
	// KindStatus: the backend answered with a non-2xx status.
	KindStatus
	// KindDecode: the body could not be decoded as the expected JSON.
	KindDecode
	// KindSemantic: 2xx, but the body lacks the expected flag or field.
	KindSemantic
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func kindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

func IsTransport(err error) bool { return kindOf(err) == KindTransport }
func IsStatus(err error) bool    { return kindOf(err) == KindStatus }
func IsDecode(err error) bool    { return kindOf(err) == KindDecode }
func IsSemantic(err error) bool  { return kindOf(err) == KindSemantic }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}
