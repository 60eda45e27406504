package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyText = errors.New("response has no generated text")
	ErrNoImage   = errors.New("response has no image data")
)

// MissingCredentialError reports a provider whose API key or token is unset.
type MissingCredentialError struct {
	Env string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Env)
}

// RequestError wraps transport and decoding failures. Secrets are masked in Error.
type RequestError struct {
	Provider string
	Err      error
	Secrets  []string
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s request: %v", e.Provider, e.Err)
	for _, s := range e.Secrets {
		if s == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, s, "REDACTED")
	}
	return msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusError is a non-2xx reply from the upstream API.
type StatusError struct {
	Provider   string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API %s: %s", e.Provider, e.Status, strings.TrimSpace(string(e.Body)))
}

// Details returns the upstream body as decoded JSON, or as a trimmed string when
// it is not JSON. Empty bodies yield nil.
func (e *StatusError) Details() any {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(e.Body, &decoded); err == nil {
		return decoded
	}
	return body
}
