package credits

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/onego-ai/onego/internal/api"
	"github.com/onego-ai/onego/internal/auth"
)

type Handler struct {
	gate *Gate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{gate: gate}
}

// GetSummary returns the authenticated user's credit balance.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	summary, err := h.gate.Summary(r.Context(), userID)
	if err != nil {
		slog.Error("getting credit summary", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, summary)
}

// ListUsage returns the user's usage events, newest first.
func (h *Handler) ListUsage(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	page, pageSize := api.ParsePagination(r)

	events, total, err := h.gate.ListUsage(r.Context(), userID, page, pageSize)
	if err != nil {
		slog.Error("listing credit usage", "error", err, "user_id", userID)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if events == nil {
		events = []*UsageEvent{}
	}

	api.JSONPaginated(w, http.StatusOK, events, total, page, pageSize)
}

// WriteError maps gate errors to HTTP responses. It reports false for errors
// it does not recognize.
func WriteError(w http.ResponseWriter, err error) bool {
	var insufficient *InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		writeInsufficient(w, insufficient)
	case errors.Is(err, ErrInsufficientCredits):
		api.HandleError(w, api.NewPaymentRequiredError("Insufficient credits."))
	case errors.Is(err, ErrPlanRestricted):
		api.HandleError(w, api.NewForbiddenError("this action requires a paid plan"))
	default:
		return false
	}
	return true
}

// insufficientResponse extends the standard error body with the numbers a
// client needs to offer a top-up.
type insufficientResponse struct {
	Error            string `json:"error"`
	AvailableCredits int    `json:"available_credits"`
	RequiredCredits  int    `json:"required_credits"`
	Shortfall        int    `json:"shortfall"`
}

func writeInsufficient(w http.ResponseWriter, e *InsufficientCreditsError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	json.NewEncoder(w).Encode(insufficientResponse{
		Error:            e.Error(),
		AvailableCredits: e.Available,
		RequiredCredits:  e.Required,
		Shortfall:        e.Shortfall(),
	})
}
