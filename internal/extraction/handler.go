package extraction

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/api"
	"github.com/onego-ai/onego/internal/auth"
	"github.com/onego-ai/onego/internal/credits"
)

// multipartOverhead leaves room for form fields and boundaries on top of the
// file itself.
const multipartOverhead = 1 << 20

type Handler struct {
	svc      *Service
	validate *validator.Validate
	maxBytes int64
}

func NewHandler(svc *Service, maxDocumentBytes int64) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		maxBytes: maxDocumentBytes,
	}
}

// Document accepts a multipart form with a "file" PDF and a "prompt" field.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.HandleError(w, api.ErrPayloadTooLarge)
			return
		}
		api.HandleError(w, api.NewBadRequestError("expected a multipart form"))
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		api.HandleError(w, api.NewValidationError("prompt is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.HandleError(w, api.NewValidationError("file is required"))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		api.HandleError(w, api.ErrPayloadTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if http.DetectContentType(data) != pdfMimeType {
		api.HandleError(w, api.NewValidationError("file must be a PDF document"))
		return
	}

	result, err := h.svc.ExtractDocument(r.Context(), userID, DocumentInput{
		FileName: header.Filename,
		Data:     data,
		Prompt:   prompt,
	})
	if err != nil {
		writeError(w, err, "extracting document")
		return
	}

	api.JSON(w, http.StatusOK, result)
}

func (h *Handler) Website(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req WebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.svc.ExtractWebsite(r.Context(), userID, req)
	if err != nil {
		writeError(w, err, "extracting website")
		return
	}

	api.JSON(w, http.StatusOK, result)
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

func writeError(w http.ResponseWriter, err error, action string) {
	if credits.WriteError(w, err) {
		return
	}

	switch {
	case errors.Is(err, ErrUnavailable):
		api.HandleError(w, api.NewServiceUnavailableError(err.Error()))
	case errors.Is(err, ErrInvalidURL):
		api.HandleError(w, api.NewValidationError(err.Error()))
	case errors.Is(err, ErrUpstream):
		slog.Warn(action, "error", err)
		api.HandleError(w, api.NewBadGatewayError(ErrUpstream.Error()))
	default:
		slog.Error(action, "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}
