package providers

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
)

// ErrRemoteService is matched by every failure talking to the LLM service.
var ErrRemoteService = errors.New("remote LLM service failed")

// RemoteError describes a failed remote call.
// StatusCode is zero for transport failures.
type RemoteError struct {
	Provider   string
	Op         string // "chat", "upload"
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s error (status %d): %s", e.Provider, e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s error: %s", e.Provider, e.Op, msg)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRemoteService}
	}
	return []error{ErrRemoteService, e.Err}
}

// RateLimited reports whether the service rejected the call with 429.
func (e *RemoteError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRemoteError extracts a RemoteError from err.
func IsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func mapOpenAIError(provider, op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &RemoteError{
			Provider:   provider,
			Op:         op,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	return &RemoteError{Provider: provider, Op: op, Err: err}
}
