package mux

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNotFound matches (via errors.Is) any 404 from the provider and lookups
// that found no matching resource.
var ErrNotFound = errors.New("mux: resource not found")

// ErrStreamNotFound reports a playback id that no live stream owns. It
// matches ErrNotFound as well.
var ErrStreamNotFound = fmt.Errorf("%w: no live stream owns the playback id", ErrNotFound)

// ErrNoPlaybackIDs reports a live stream that came back without playback ids.
var ErrNoPlaybackIDs = errors.New("mux: live stream has no playback ids")

const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Type       string
	Messages   []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Messages, "; ")
	switch {
	case e.Type != "" && msg != "":
		return fmt.Sprintf("mux: %d %s: %s", e.StatusCode, e.Type, msg)
	case e.Type != "":
		return fmt.Sprintf("mux: %d %s", e.StatusCode, e.Type)
	case msg != "":
		return fmt.Sprintf("mux: %d: %s", e.StatusCode, msg)
	default:
		return fmt.Sprintf("mux: unexpected status %d", e.StatusCode)
	}
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body struct {
		Error struct {
			Type     string   `json:"type"`
			Messages []string `json:"messages"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && (body.Error.Type != "" || len(body.Error.Messages) > 0) {
		apiErr.Type = body.Error.Type
		apiErr.Messages = body.Error.Messages
		return apiErr
	}

	apiErr.Messages = []string{strings.TrimSpace(string(raw))}
	return apiErr
}

// StatusOf returns the provider status carried by err, StatusUnavailable for
// transport failures and 0 for a nil error.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return StatusUnavailable
}
