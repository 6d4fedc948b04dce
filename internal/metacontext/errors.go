package metacontext

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the stable, caller-facing error categories.
type ErrorKind string

const (
	// ErrKindInvalidPayload covers a missing required field, an enum value
	// outside the allowed set, or a malformed tag pattern.
	ErrKindInvalidPayload ErrorKind = "invalid_payload"
	// ErrKindUnknownLane covers operating on a lane id never created via EnsureLane.
	ErrKindUnknownLane ErrorKind = "unknown_lane"
	// ErrKindUnknownRef covers pinning or reading a (kind, id) that does not exist.
	ErrKindUnknownRef ErrorKind = "unknown_ref"
)

// Error is the engine's single error type, discriminated by Kind so callers
// can switch on it with errors.As without string matching.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is(err, ErrInvalidPayload) (etc.) match by kind, ignoring message.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return te.Kind == e.Kind && te.Message == ""
}

func newInvalidPayload(format string, args ...any) *Error {
	return &Error{Kind: ErrKindInvalidPayload, Message: fmt.Sprintf(format, args...)}
}

func newUnknownLane(laneID string) *Error {
	return &Error{Kind: ErrKindUnknownLane, Message: fmt.Sprintf("lane %q is not registered", laneID)}
}

func newUnknownRef(ref Ref) *Error {
	return &Error{Kind: ErrKindUnknownRef, Message: fmt.Sprintf("%s %q does not exist", ref.Kind, ref.ID)}
}

// Sentinel values for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, ErrInvalidPayload).
var (
	ErrInvalidPayload = &Error{Kind: ErrKindInvalidPayload}
	ErrUnknownLane    = &Error{Kind: ErrKindUnknownLane}
	ErrUnknownRef     = &Error{Kind: ErrKindUnknownRef}
)
