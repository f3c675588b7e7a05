package testutil

import (
	"context"
	"sync"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
)

// SentCode is one captured dispatch.
type SentCode struct {
	Channel domain.CodeChannel
	To      string
	Code    string
}

// CapturingSender records dispatched codes instead of delivering them.
// Dispatch is asynchronous, so reads synchronize on the same mutex.
type CapturingSender struct {
	mu   sync.Mutex
	sent []SentCode
}

func NewCapturingSender() *CapturingSender {
	return &CapturingSender{}
}

func (s *CapturingSender) SendCode(_ context.Context, channel domain.CodeChannel, to, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, SentCode{Channel: channel, To: to, Code: code})
	return nil
}

// Sent returns a copy of everything captured so far.
func (s *CapturingSender) Sent() []SentCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentCode, len(s.sent))
	copy(out, s.sent)
	return out
}
