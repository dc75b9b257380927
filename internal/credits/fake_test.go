package credits

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepository mirrors the SQL semantics of postgresRepository.
type memoryRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	events   []*UsageEvent
	failNext error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{accounts: map[uuid.UUID]*Account{}}
}

func (m *memoryRepository) seed(userID uuid.UUID, plan PlanType, monthly, used int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = &Account{
		UserID:               userID,
		PlanType:             plan,
		MonthlyCredits:       monthly,
		CreditsUsedThisMonth: used,
		ResetDate:            time.Now().AddDate(0, 1, 0),
	}
}

func (m *memoryRepository) GetOrCreate(_ context.Context, userID uuid.UUID) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		a = &Account{
			UserID:         userID,
			PlanType:       PlanFree,
			MonthlyCredits: PlanFree.MonthlyAllowance(),
			ResetDate:      time.Now().AddDate(0, 1, 0),
		}
		m.accounts[userID] = a
	}
	cp := *a
	return &cp, nil
}

func (m *memoryRepository) Consume(_ context.Context, req ConsumeRequest) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return nil, err
	}
	a, ok := m.accounts[req.UserID]
	if !ok || a.Total()-a.CreditsUsedThisMonth < req.Cost {
		return nil, ErrInsufficientCredits
	}
	a.CreditsUsedThisMonth += req.Cost
	metadata, _ := json.Marshal(req.Metadata)
	m.events = append(m.events, &UsageEvent{
		ID:          uuid.New(),
		UserID:      req.UserID,
		ActionType:  req.Action,
		CreditsUsed: req.Cost,
		Description: req.Description,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	})
	cp := *a
	return &cp, nil
}

func (m *memoryRepository) ListUsage(_ context.Context, userID uuid.UUID, limit, offset int) ([]*UsageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*UsageEvent
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].UserID == userID {
			out = append(out, m.events[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (m *memoryRepository) CountUsage(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.events {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) ResetExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.accounts {
		if !a.ResetDate.After(now) {
			a.CreditsUsedThisMonth = 0
			a.ResetDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) used(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[userID].CreditsUsedThisMonth
}

func (m *memoryRepository) eventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
