package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
)

// Ensure Memory implements intake.DraftStore interface.
var _ intake.DraftStore = (*Memory)(nil)

type entry struct {
	expires time.Time
	data    []byte
}

// Memory keeps drafts in process. Drafts are stored encoded so callers never
// share state with the store. Suitable for a single replica or tests.
type Memory struct {
	drafts map[string]entry
	now    func() time.Time
	mu     sync.Mutex
	ttl    time.Duration
}

func NewMemory(ttl time.Duration) *Memory {
	return NewMemoryWithClock(ttl, time.Now)
}

func NewMemoryWithClock(ttl time.Duration, now func() time.Time) *Memory {
	return &Memory{
		drafts: make(map[string]entry),
		now:    now,
		ttl:    ttl,
	}
}

func (m *Memory) Put(_ context.Context, sessionID string, draft *intake.PendingDraft) error {
	data, err := encode(draft)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{data: data}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.drafts[sessionID] = e
	return nil
}

func (m *Memory) Get(_ context.Context, sessionID string) (*intake.PendingDraft, error) {
	m.mu.Lock()
	e, ok := m.drafts[sessionID]
	if ok && !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.drafts, sessionID)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, intake.ErrNoPendingDraft
	}

	return decode(e.data)
}

func (m *Memory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, sessionID)
	return nil
}

// Len reports how many drafts are held, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.drafts)
}
