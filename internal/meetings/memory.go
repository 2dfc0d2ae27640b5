package meetings

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mockline/scheduler/pkg/errors"
)

// NewMemoryProvider returns an in-process provider used in dev mode and
// tests. Meetings exist only for the lifetime of the process.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		meetings: map[string]Meeting{},
	}
}

type MemoryProvider struct {
	mu       sync.Mutex
	meetings map[string]Meeting
}

func (p *MemoryProvider) Configured() bool {
	return true
}

func (p *MemoryProvider) Create(_ context.Context, host, _ string, _ time.Time, _ int) (*Meeting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.NewString()
	m := Meeting{
		ID:       id,
		JoinURL:  "https://meet.invalid/j/" + id,
		StartURL: "https://meet.invalid/s/" + id,
		Host:     host,
	}
	p.meetings[id] = m

	return &m, nil
}

func (p *MemoryProvider) Delete(_ context.Context, meetingID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.meetings[meetingID]; !ok {
		return providerErr("delete meeting", errors.Error("not found"))
	}

	delete(p.meetings, meetingID)
	return nil
}

func (p *MemoryProvider) Get(_ context.Context, meetingID string) (*Meeting, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.meetings[meetingID]
	if !ok {
		return nil, providerErr("get meeting", errors.Error("not found"))
	}

	return &m, nil
}

// Unconfigured is a provider with no credentials; every operation fails
// and Configured reports false. Deployments without a meeting provider
// fall back to it and the scheduler degrades accordingly.
type Unconfigured struct{}

func (Unconfigured) Configured() bool {
	return false
}

func (Unconfigured) Create(context.Context, string, string, time.Time, int) (*Meeting, error) {
	return nil, providerErr("create meeting", errors.Error("provider is not configured"))
}

func (Unconfigured) Delete(context.Context, string) error {
	return providerErr("delete meeting", errors.Error("provider is not configured"))
}

func (Unconfigured) Get(context.Context, string) (*Meeting, error) {
	return nil, providerErr("get meeting", errors.Error("provider is not configured"))
}
