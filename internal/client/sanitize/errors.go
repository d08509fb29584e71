package sanitize

import "fmt"

// Kind classifies a failed call. Every failure mode of the client pipeline
// maps to exactly one Kind before it reaches application code; no raw
// transport errors leak past the facade.
type Kind int

const (
	// KindNetworkFailure is a transport-level failure; Reason carries the
	// transport error message.
	KindNetworkFailure Kind = iota + 1
	// KindUnexpectedResponse means the call produced no HTTP response at all.
	KindUnexpectedResponse
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	// KindClientError is any other 4xx; Reason is set only when the server
	// supplied one in the error body.
	KindClientError
	KindServerError
	// KindMissingToken is raised by the facade before any network I/O when a
	// token-authenticated operation finds no stored token.
	KindMissingToken
)

var kindNames = map[Kind]string{
	KindNetworkFailure:     "network failure",
	KindUnexpectedResponse: "unexpected response",
	KindBadRequest:         "bad request",
	KindUnauthorized:       "unauthorized",
	KindForbidden:          "forbidden",
	KindNotFound:           "not found",
	KindClientError:        "client error",
	KindServerError:        "server error",
	KindMissingToken:       "missing token",
}

// Error is the single error type surfaced by the client pipeline.
type Error struct {
	Kind Kind
	// Reason carries the transport message (NetworkFailure) or the server's
	// reason string (ClientError with HasReason set).
	Reason    string
	HasReason bool
}

func (e *Error) Error() string {
	name := kindNames[e.Kind]
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", name, e.Reason)
	}
	return name
}

// Is makes errors.Is match on Kind, so callers can compare against the
// sentinel values below without caring about Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrNetworkFailure = &Error{Kind: KindNetworkFailure}
	ErrUnauthorized   = &Error{Kind: KindUnauthorized}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrMissingToken   = &Error{Kind: KindMissingToken}
)
