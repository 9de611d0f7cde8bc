package solver

import "errors"

// Kind classifies a remote call failure.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindTimeout           Kind = "timeout"
	KindRemoteRejected    Kind = "remote_rejected"
	KindMalformedResponse Kind = "malformed_response"
)

// Error is a typed remote failure. Message is safe to surface to the user.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// KindOf returns the failure kind of err, or "" if err is not a solver error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
