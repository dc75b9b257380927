package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func named(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", name)
		w.WriteHeader(http.StatusOK)
	}
}

func testHandlerSet() HandlerSet {
	return HandlerSet{
		CreateCourse:      named("create-course"),
		ListCourses:       named("list-courses"),
		GetCourse:         named("get-course"),
		RegenerateQuizzes: named("regenerate-quizzes"),
		CourseChat:        named("course-chat"),
		GetCredits:        named("get-credits"),
		ListCreditUsage:   named("list-credit-usage"),
		ExtractDocument:   named("extract-document"),
		ExtractWebsite:    named("extract-website"),
		ListActivity:      named("list-activity"),
		AuthMiddleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "" {
					HandleError(w, ErrUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
	}
}

func TestRouter_Routes(t *testing.T) {
	var limited []string
	router := NewRouter(nil, nil, RouterConfig{
		GenerationRateLimiter: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				limited = append(limited, r.Method+" "+r.URL.Path)
				next.ServeHTTP(w, r)
			})
		},
	}, testHandlerSet())

	tests := []struct {
		method  string
		path    string
		handler string
		limited bool
	}{
		{http.MethodPost, "/api/v1/courses", "create-course", true},
		{http.MethodGet, "/api/v1/courses", "list-courses", false},
		{http.MethodGet, "/api/v1/courses/8f7c2a8e-2f4b-4a55-9d0b-1f7a3c1f1e11", "get-course", false},
		{http.MethodPost, "/api/v1/courses/8f7c2a8e-2f4b-4a55-9d0b-1f7a3c1f1e11/quizzes", "regenerate-quizzes", true},
		{http.MethodPost, "/api/v1/courses/8f7c2a8e-2f4b-4a55-9d0b-1f7a3c1f1e11/chat", "course-chat", true},
		{http.MethodGet, "/api/v1/credits", "get-credits", false},
		{http.MethodGet, "/api/v1/credits/usage", "list-credit-usage", false},
		{http.MethodPost, "/api/v1/extractions/document", "extract-document", true},
		{http.MethodPost, "/api/v1/extractions/website", "extract-website", true},
		{http.MethodGet, "/api/v1/activity", "list-activity", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			limited = nil
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.handler, rec.Header().Get("X-Handler"))
			assert.Equal(t, tt.limited, len(limited) == 1)
		})
	}
}

func TestRouter_RequiresAuth(t *testing.T) {
	router := NewRouter(nil, nil, RouterConfig{}, testHandlerSet())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Liveness(t *testing.T) {
	router := NewRouter(nil, nil, RouterConfig{}, testHandlerSet())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
