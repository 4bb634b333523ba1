package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/V4T54L/log-tracer/internal/domain"
)

// MockRecordSource is a mock implementation of domain.RecordSource for testing.
type MockRecordSource struct {
	mu          sync.Mutex
	PollResult  []domain.Record
	PollErr     error
	PollCalls   int
	LastMax     int
	LastTimeout time.Duration
	Closed      bool
}

func (m *MockRecordSource) Poll(ctx context.Context, max int, timeout time.Duration) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PollCalls++
	m.LastMax = max
	m.LastTimeout = timeout
	if m.PollErr != nil {
		return nil, m.PollErr
	}
	return m.PollResult, nil
}

func (m *MockRecordSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// MockRecordSink is a mock implementation of domain.RecordSink for testing.
// OnPublish, when set, runs after each recorded publish with the number of calls so far.
type MockRecordSink struct {
	mu         sync.Mutex
	Published  [][]byte
	PublishErr error
	CloseErr   error
	Closed     bool
	OnPublish  func(calls int)
}

func (m *MockRecordSink) Publish(ctx context.Context, value []byte) error {
	m.mu.Lock()
	m.Published = append(m.Published, value)
	calls := len(m.Published)
	err := m.PublishErr
	hook := m.OnPublish
	m.mu.Unlock()

	if hook != nil {
		hook(calls)
	}
	return err
}

func (m *MockRecordSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.CloseErr
}

// Values returns a copy of the published payloads.
func (m *MockRecordSink) Values() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.Published))
	copy(out, m.Published)
	return out
}
