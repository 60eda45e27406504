package proxy

import (
	"errors"
	"net/http"

	"ai-tool-proxy/internal/provider"
)

const (
	msgMissingFields   = "Missing tool_category or prompt"
	msgUnsupported     = "Unsupported tool category"
	msgInvalidJSON     = "Invalid JSON in request"
	msgUnexpectedText  = "API response was unexpected or empty"
	msgNoImage         = "Image generation failed or returned no data"
	msgRequestFailed   = "API request failed: "
	msgUnexpectedError = "An unexpected error occurred: "
)

// Error is what Run returns on failure: an HTTP status plus the message and
// optional details written to the caller.
type Error struct {
	Status  int
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// ErrInvalidJSON is the error for a request body that does not decode.
func ErrInvalidJSON(err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msgInvalidJSON, Err: err}
}

func badRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// classify turns a provider failure into the caller facing error.
func classify(err error) *Error {
	var (
		credErr   *provider.MissingCredentialError
		statusErr *provider.StatusError
		reqErr    *provider.RequestError
	)

	switch {
	case errors.As(err, &credErr):
		return &Error{Status: http.StatusInternalServerError, Message: credErr.Error(), Err: err}
	case errors.Is(err, provider.ErrEmptyText):
		return &Error{Status: http.StatusInternalServerError, Message: msgUnexpectedText, Err: err}
	case errors.Is(err, provider.ErrNoImage):
		return &Error{Status: http.StatusInternalServerError, Message: msgNoImage, Err: err}
	case errors.As(err, &statusErr):
		return &Error{
			Status:  http.StatusInternalServerError,
			Message: msgRequestFailed + statusErr.Error(),
			Details: statusErr.Details(),
			Err:     err,
		}
	case errors.As(err, &reqErr):
		return &Error{Status: http.StatusInternalServerError, Message: msgRequestFailed + reqErr.Error(), Err: err}
	default:
		return &Error{Status: http.StatusInternalServerError, Message: msgUnexpectedError + err.Error(), Err: err}
	}
}
