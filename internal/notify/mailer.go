package notify

import (
	"context"
	"sync"
)

type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type Email struct {
	FromName string
	From     string
	To       []string
	Subject  string
	TextBody string
	Headers  map[string]string
}

// MockMailer records every message it is asked to send.
type MockMailer struct {
	mu   sync.Mutex
	Sent []Email
	Err  error
}

func (m *MockMailer) Send(ctx context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, e)
	return m.Err
}

func (m *MockMailer) Messages() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.Sent...)
}
