package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onego-ai/onego/internal/auth"
)

type stubRepository struct {
	logs   []AuditLog
	err    error
	params ListParams
}

func (s *stubRepository) Insert(context.Context, *AuditLog) error { return s.err }

func (s *stubRepository) ListByOwner(_ context.Context, _ uuid.UUID, params ListParams) ([]AuditLog, int64, error) {
	s.params = params
	return s.logs, int64(len(s.logs)), s.err
}

func authedRequest(target string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	return r.WithContext(auth.WithUserClaims(r.Context(), &auth.AccessClaims{UserID: uuid.NewString()}))
}

func TestHandler_List(t *testing.T) {
	repo := &stubRepository{logs: []AuditLog{{ID: uuid.New(), EventType: EventCourseCreated, Severity: SeverityInfo}}}
	h := NewHandler(repo)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest("/api/v1/activity?event_type=course.created&page=2&page_size=5&from=2026-01-01T00:00:00Z"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, EventCourseCreated, repo.params.EventType)
	assert.Equal(t, 2, repo.params.Page)
	assert.Equal(t, 5, repo.params.PageSize)
	require.NotNil(t, repo.params.From)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *repo.params.From)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["total_count"])
}

func TestHandler_ListErrors(t *testing.T) {
	h := NewHandler(&stubRepository{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.List(rec, authedRequest("/api/v1/activity"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
