// Package sanitize implements the fixed-order response sanitizer every
// client call runs before decoding. Centralizing classification here means
// every facade method surfaces identical error semantics regardless of which
// endpoint was hit. All checks are pure functions over the raw response.
package sanitize

import (
	"encoding/json"
	"net/http"
)

// SuccessBody is the canonical payload synthesized for empty success
// responses.
const SuccessBody = `{"success":true}`

// errorShape is the server's error body: {"error": true, "reason": "..."}.
type errorShape struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Run applies the sanitizer pipeline to a completed call. Stages run
// strictly in order and each may short-circuit:
//
//  1. transport error present          -> NetworkFailure(message)
//  2. payload is the error shape       -> ClientError(reason)
//  3. no HTTP response                 -> UnexpectedResponse
//  4. status mapping                   -> BadRequest/Unauthorized/Forbidden/
//     NotFound/ClientError/ServerError
//  5. empty payload                    -> canonical success body, otherwise
//     the raw payload
func Run(payload []byte, resp *http.Response, transportErr error) ([]byte, error) {
	if transportErr != nil {
		return nil, &Error{Kind: KindNetworkFailure, Reason: transportErr.Error()}
	}

	if shape, ok := parseErrorShape(payload); ok {
		return nil, &Error{Kind: KindClientError, Reason: shape.Reason, HasReason: true}
	}

	if resp == nil {
		return nil, &Error{Kind: KindUnexpectedResponse}
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}

	if len(payload) == 0 {
		return []byte(SuccessBody), nil
	}
	return payload, nil
}

// RunBinary classifies a binary download. File bytes are opaque, so only the
// transport and status stages apply: an empty blob stays empty, and a payload
// that happens to parse as JSON is returned untouched. On a failure status
// the body is server-generated, so the canonical error shape is still
// consulted for the reason.
func RunBinary(payload []byte, resp *http.Response, transportErr error) ([]byte, error) {
	if transportErr != nil {
		return nil, &Error{Kind: KindNetworkFailure, Reason: transportErr.Error()}
	}

	if resp == nil {
		return nil, &Error{Kind: KindUnexpectedResponse}
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		if shape, ok := parseErrorShape(payload); ok {
			err.Reason = shape.Reason
			err.HasReason = true
		}
		return nil, err
	}
	return payload, nil
}

// parseErrorShape reports whether payload is the server's error body. Only
// error=true counts: a JSON object that happens to carry error=false is
// ordinary payload.
func parseErrorShape(payload []byte) (errorShape, bool) {
	var shape errorShape
	if len(payload) == 0 {
		return shape, false
	}
	if err := json.Unmarshal(payload, &shape); err != nil {
		return shape, false
	}
	return shape, shape.Error
}

func classifyStatus(status int) *Error {
	switch {
	case status == http.StatusBadRequest:
		return &Error{Kind: KindBadRequest}
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized}
	case status == http.StatusForbidden:
		return &Error{Kind: KindForbidden}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound}
	case status == http.StatusPaymentRequired, status >= 405 && status <= 499:
		return &Error{Kind: KindClientError}
	case status >= 500 && status <= 599:
		return &Error{Kind: KindServerError}
	default:
		return nil
	}
}
