// Package fault defines the error taxonomy shared by the viewer components.
// Every failure surfaced to the user is a *Error carrying one Kind, so the
// session can render a status line and the HTTP layer can map it to a code.
package fault

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure.
type Kind string

const (
	KindConnection Kind = "connection"
	KindProtocol   Kind = "protocol"
	KindServer     Kind = "server"
	KindDecode     Kind = "decode"
	KindParse      Kind = "parse"
	KindTimeout    Kind = "timeout"
)

// Error is a classified failure. ModelID is zero when the failure is not
// scoped to a single model.
type Error struct {
	Kind    Kind
	ModelID int64
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	s := string(e.Kind) + " error"
	if e.ModelID > 0 {
		s += fmt.Sprintf(" (model %d)", e.ModelID)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Connection reports a failed dial, a dropped link, or a send on a closed channel.
func Connection(msg string, err error) error {
	return &Error{Kind: KindConnection, Msg: msg, Err: err}
}

// Protocol reports an inbound frame that matches no known shape.
func Protocol(msg string, err error) error {
	return &Error{Kind: KindProtocol, Msg: msg, Err: err}
}

// Server wraps the message of an error frame sent by the backend.
func Server(msg string) error {
	return &Error{Kind: KindServer, Msg: msg}
}

// Decode reports a payload that is not valid base64.
func Decode(id int64, err error) error {
	return &Error{Kind: KindDecode, ModelID: id, Err: err}
}

// Parse reports binary model data the parser rejected.
func Parse(id int64, err error) error {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == KindParse {
		return err
	}
	return &Error{Kind: KindParse, ModelID: id, Err: err}
}

// Timeout reports a single-model request that got no response in time.
func Timeout(id int64, after time.Duration) error {
	return &Error{Kind: KindTimeout, ModelID: id, Msg: "no response after " + after.String()}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// ModelOf returns the model id attached to err, or zero.
func ModelOf(err error) int64 {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.ModelID
	}
	return 0
}

func is(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// IsConnection reports whether err is a connection failure.
func IsConnection(err error) bool { return is(err, KindConnection) }

// IsProtocol reports whether err is a malformed or unrecognized frame.
func IsProtocol(err error) bool { return is(err, KindProtocol) }

// IsServer reports whether err carries a backend error frame.
func IsServer(err error) bool { return is(err, KindServer) }

// IsDecode reports whether err is a payload decoding failure.
func IsDecode(err error) bool { return is(err, KindDecode) }

// IsParse reports whether err is a model parsing failure.
func IsParse(err error) bool { return is(err, KindParse) }

// IsTimeout reports whether err is an expired single-model request.
func IsTimeout(err error) bool { return is(err, KindTimeout) }
