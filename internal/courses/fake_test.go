package courses

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/credits"
	"github.com/onego-ai/onego/internal/quiz"
)

type memoryRepository struct {
	mu          sync.Mutex
	courses     map[uuid.UUID]*Course
	createErr   error
	updateErr   error
	quizUpdates int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{courses: map[uuid.UUID]*Course{}}
}

func (m *memoryRepository) Create(_ context.Context, c *Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.courses[c.ID] = clone(c)
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (m *memoryRepository) ListByCreator(_ context.Context, creatorID uuid.UUID, limit, offset int) ([]*Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Course, 0)
	for _, c := range m.courses {
		if c.CreatorID == creatorID {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*Course{}, nil
	}
	return out[offset:min(len(out), offset+limit)], nil
}

func (m *memoryRepository) CountByCreator(_ context.Context, creatorID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.courses {
		if c.CreatorID == creatorID {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) UpdateQuizzes(_ context.Context, id uuid.UUID, quizzes []quiz.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.courses[id]
	if !ok {
		return ErrCourseNotFound
	}
	c.Quizzes = quizzes
	c.QuizCount = len(quizzes)
	c.QuizzesPending = false
	m.quizUpdates++
	return nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.courses, id)
	return nil
}

func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.courses)
}

// clone round-trips through JSON so stored courses never alias caller data.
func clone(c *Course) *Course {
	data, _ := json.Marshal(c)
	var out Course
	_ = json.Unmarshal(data, &out)
	return &out
}

// ledger is a minimal in-memory credits.Repository.
type ledger struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]*credits.Account
	events     []credits.ConsumeRequest
	consumeErr error
}

func newLedger() *ledger {
	return &ledger{accounts: map[uuid.UUID]*credits.Account{}}
}

func (l *ledger) seed(userID uuid.UUID, monthly, used int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[userID] = &credits.Account{
		UserID:               userID,
		PlanType:             credits.PlanFree,
		MonthlyCredits:       monthly,
		CreditsUsedThisMonth: used,
		ResetDate:            time.Now().AddDate(0, 1, 0),
	}
}

func (l *ledger) used(userID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[userID].CreditsUsedThisMonth
}

func (l *ledger) eventCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *ledger) GetOrCreate(_ context.Context, userID uuid.UUID) (*credits.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[userID]
	if !ok {
		return nil, errors.New("unknown account")
	}
	cp := *a
	return &cp, nil
}

func (l *ledger) Consume(_ context.Context, req credits.ConsumeRequest) (*credits.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.consumeErr != nil {
		return nil, l.consumeErr
	}
	a := l.accounts[req.UserID]
	if a.Total()-a.CreditsUsedThisMonth < req.Cost {
		return nil, credits.ErrInsufficientCredits
	}
	a.CreditsUsedThisMonth += req.Cost
	l.events = append(l.events, req)
	cp := *a
	return &cp, nil
}

func (l *ledger) ListUsage(context.Context, uuid.UUID, int, int) ([]*credits.UsageEvent, error) {
	return nil, nil
}

func (l *ledger) CountUsage(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (l *ledger) ResetExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
