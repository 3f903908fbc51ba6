package api

import (
	"fmt"
	"net/http"
)

// ErrorKind is the machine-readable class carried in ErrorResponse.Code.
type ErrorKind string

const (
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindNotFound         ErrorKind = "not_found"
	KindMethodNotAllowed ErrorKind = "method_not_allowed"
	KindInternal         ErrorKind = "internal"
)

// Sentinels for errors.Is against errors returned by Client.
var (
	ErrInvalidArgument = &APIError{Code: string(KindInvalidArgument)}
	ErrNotFound        = &APIError{Code: string(KindNotFound)}
	ErrInternal        = &APIError{Code: string(KindInternal)}
)

// APIError is a failed sprintdesk API call as seen by the client.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

// Kind reports the error class. Responses without a code, such as those from a
// proxy in front of the server, fall back to the HTTP status.
func (e *APIError) Kind() ErrorKind {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return ErrorKind(e.Code)
	}
	switch {
	case e.Status == http.StatusBadRequest:
		return KindInvalidArgument
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status == http.StatusMethodNotAllowed:
		return KindMethodNotAllowed
	case e.Status >= http.StatusInternalServerError:
		return KindInternal
	}
	return ""
}

// FromServer reports whether the body was a sprintdesk error envelope.
func (e *APIError) FromServer() bool {
	return e != nil && e.Code != ""
}

func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind() != "" && t.Kind() == e.Kind()
}

func (e *APIError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Code != "" && e.Message != "":
		return e.Code + ": " + e.Message
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return fmt.Sprintf("sprintdesk api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return "sprintdesk api error"
}
