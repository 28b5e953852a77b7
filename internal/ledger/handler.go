package ledger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"recircle/pkg/platform/httputil"
	"recircle/pkg/requestcontext"
)

// Handler exposes the authenticated user's balance and statement.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/points", h.handlePoints)
}

type transactionResponse struct {
	Delta       int       `json:"delta"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type pointsResponse struct {
	Balance      int                   `json:"balance"`
	Transactions []transactionResponse `json:"transactions"`
}

func (h *Handler) handlePoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	balance, err := h.service.Balance(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch balance failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	history, err := h.service.History(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch history failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	resp := pointsResponse{Balance: balance, Transactions: make([]transactionResponse, 0, len(history))}
	for _, entry := range history {
		resp.Transactions = append(resp.Transactions, transactionResponse{
			Delta:       entry.Delta,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
