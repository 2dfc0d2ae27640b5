package meetings

import (
	"context"
	"fmt"
	"time"
)

// Provider is a pool of licensed video-meeting host accounts. Each host can
// run one meeting at a time; who hosts what is decided by the scheduler,
// the provider only provisions the resource.
type Provider interface {
	// Configured reports whether the provider has credentials. Callers probe
	// this before any meeting operation and degrade gracefully when false.
	Configured() bool

	Create(ctx context.Context, host, topic string, start time.Time, durationMin int) (*Meeting, error)
	Delete(ctx context.Context, meetingID string) error
	Get(ctx context.Context, meetingID string) (*Meeting, error)
}

// Meeting is the externally provisioned meeting resource.
type Meeting struct {
	ID       string `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
	Host     string `json:"host"`
}

// ProviderError marks credential, network and remote-API failures so that
// callers can tell a recoverable provider outage from everything else.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("meeting provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(op string, err error) error {
	return &ProviderError{Op: op, Err: err}
}
