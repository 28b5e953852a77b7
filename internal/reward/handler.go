package reward

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/httputil"
	"recircle/pkg/requestcontext"
)

// Handler exposes the reward catalog and redemption endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the reward routes. The router applies authentication
// before these are reached.
func (h *Handler) Register(r chi.Router) {
	r.Get("/rewards", h.handleList)
	r.Post("/rewards/{rewardID}/redeem", h.handleRedeem)
	r.Get("/redemptions", h.handleRedemptions)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list rewards failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rewards)
}

type redemptionResponse struct {
	ID         string `json:"id"`
	RewardID   string `json:"reward_id"`
	RedeemedAt string `json:"redeemed_at"`
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if requestcontext.Role(ctx) != domain.RoleCitizen {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only citizens redeem rewards"))
		return
	}
	rewardID, err := domain.ParseRewardID(chi.URLParam(r, "rewardID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	redemption, err := h.service.Redeem(ctx, userID, rewardID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeInsufficientBalance) {
			h.logger.ErrorContext(ctx, "redeem failed", "error", err, "reward_id", rewardID)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, redemptionResponse{
		ID:         redemption.ID.String(),
		RewardID:   redemption.RewardID.String(),
		RedeemedAt: redemption.RedeemedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) handleRedemptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	redemptions, err := h.service.Redemptions(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "list redemptions failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]redemptionResponse, 0, len(redemptions))
	for _, red := range redemptions {
		out = append(out, redemptionResponse{
			ID:         red.ID.String(),
			RewardID:   red.RewardID.String(),
			RedeemedAt: red.RedeemedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
