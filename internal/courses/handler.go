package courses

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/api"
	"github.com/onego-ai/onego/internal/auth"
	"github.com/onego-ai/onego/internal/credits"
)

type Handler struct {
	svc      *Service
	tutor    *Tutor
	validate *validator.Validate
}

func NewHandler(svc *Service, tutor *Tutor) *Handler {
	return &Handler{
		svc:      svc,
		tutor:    tutor,
		validate: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	resp, err := h.svc.Create(r.Context(), userID, &req)
	if err != nil {
		if credits.WriteError(w, err) {
			return
		}
		api.HandleError(w, api.NewInternalError("course creation failed: "+err.Error()))
		return
	}

	status := http.StatusCreated
	if resp.Course.QuizzesPending {
		status = http.StatusAccepted
	}
	api.JSON(w, status, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var params ListCoursesParams
	params.Page, params.PageSize = api.ParsePagination(r)

	list, totalCount, err := h.svc.List(r.Context(), userID, params)
	if err != nil {
		slog.Error("listing courses", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONPaginated(w, http.StatusOK, list, totalCount, params.Page, params.PageSize)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid course id"))
		return
	}

	course, err := h.svc.Get(r.Context(), userID, courseID)
	if err != nil {
		writeLookupError(w, err, "getting course")
		return
	}

	api.JSON(w, http.StatusOK, course)
}

func (h *Handler) RegenerateQuizzes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid course id"))
		return
	}

	// The body is optional.
	var req RegenerateQuizzesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	course, err := h.svc.RegenerateQuizzes(r.Context(), userID, courseID, req.QuizCount)
	if err != nil {
		writeLookupError(w, err, "regenerating quizzes")
		return
	}

	api.JSON(w, http.StatusOK, course)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	courseID, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		api.HandleError(w, api.NewBadRequestError("invalid course id"))
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	reply, err := h.tutor.Reply(r.Context(), userID, courseID, req)
	if err != nil {
		writeLookupError(w, err, "chatting with tutor")
		return
	}

	api.JSON(w, http.StatusOK, reply)
}

func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

func writeLookupError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		api.HandleError(w, api.NewNotFoundError("course not found"))
	case errors.Is(err, ErrNotCourseOwner):
		api.HandleError(w, api.ErrOwnershipViolation)
	default:
		slog.Error(action, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
