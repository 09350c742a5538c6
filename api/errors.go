package api

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidStatusCode = errors.New("invalid status code")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL    string
	Code   int
	Reason string
}

func NewStatusError(url string, code int) *StatusError {
	reason := http.StatusText(code)
	if reason == "" {
		reason = "Unknown Reason"
	}
	return &StatusError{URL: url, Code: code, Reason: reason}
}

func (se *StatusError) Error() string {
	return fmt.Sprintf("download from %s gives [%d: %s] status code", se.URL, se.Code, se.Reason)
}

func (se *StatusError) Unwrap() error {
	return ErrInvalidStatusCode
}

// Temporary reports whether the same request may succeed later.
func (se *StatusError) Temporary() bool {
	return se.Code == http.StatusTooManyRequests || se.Code >= 500
}

// DecodeError means the response body was not the JSON we expected.
type DecodeError struct {
	err error
	URL string
}

func (de *DecodeError) Error() string {
	explanation := "failed to deserialize json body from: " + de.URL
	if de.err != nil {
		return explanation + ": " + de.err.Error()
	}
	return explanation
}

func (de *DecodeError) Unwrap() error {
	return de.err
}
