// Package provider talks to the external delegated identity service
// used for single sign-on session exchange.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	// ErrRejected: the provider refused the supplied session id.
	ErrRejected = errors.New("provider rejected session")
	// ErrTimeout: the provider did not answer within the deadline.
	ErrTimeout = errors.New("provider timeout")
	// ErrUnavailable: any other provider failure.
	ErrUnavailable = errors.New("provider unavailable")
)

// Identity is the profile the provider vouches for.
type Identity struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Exchanger interface {
	Exchange(ctx context.Context, sessionID string) (Identity, error)
}

type HTTPExchanger struct {
	url    string
	client *http.Client
}

func NewHTTPExchanger(url string, timeout time.Duration) *HTTPExchanger {
	return &HTTPExchanger{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
	}
}

func (e *HTTPExchanger) Exchange(ctx context.Context, sessionID string) (Identity, error) {
	if e.url == "" {
		return Identity{}, fmt.Errorf("%w: no provider configured", ErrUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Identity{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("%w: provider HTTP %d", ErrRejected, resp.StatusCode)
	}
	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(id.Email) == "" {
		return Identity{}, fmt.Errorf("%w: provider response missing email", ErrUnavailable)
	}
	return id, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
