package main

import "fmt"

// ProtocolError is a client-fatal protocol violation. The dispatcher
// terminates the offending client; no error event is sent, since a
// malformed stream cannot be trusted to name a valid object.
type ProtocolError struct {
	Code   uint32
	Reason string
}

func (err *ProtocolError) Error() string {
	return err.Reason
}

func protocolErrorf(code uint32, format string, args ...any) error {
	return &ProtocolError{
		Code:   code,
		Reason: fmt.Sprintf(format, args...),
	}
}
