package collection

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/httputil"
	"recircle/pkg/requestcontext"
)

// Lister is the read side the handler needs; the workflow service provides
// it.
type Lister interface {
	AvailableCollections(ctx context.Context) ([]Collection, error)
	CollectorCollections(ctx context.Context, collectorID domain.UserID) ([]Collection, error)
}

// Handler exposes the collector-facing collection endpoints.
type Handler struct {
	engine *Engine
	lister Lister
	logger *slog.Logger
}

func NewHandler(engine *Engine, lister Lister, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, lister: lister, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/collections/available", h.handleAvailable)
	r.Get("/collections", h.handleAssigned)
	r.Post("/collections/{collectionID}/transition", h.handleTransition)
}

// Response is the wire shape of a collection.
type Response struct {
	ID          string     `json:"id"`
	ResidueID   string     `json:"residue_id"`
	CollectorID *string    `json:"collector_id,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// ToResponse converts a collection to its wire shape.
func ToResponse(c Collection) Response {
	resp := Response{
		ID:          c.ID.String(),
		ResidueID:   c.ResidueID.String(),
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		ProcessedAt: c.ProcessedAt,
	}
	if c.CollectorID != nil {
		id := c.CollectorID.String()
		resp.CollectorID = &id
	}
	return resp
}

func toResponses(collections []Collection) []Response {
	out := make([]Response, 0, len(collections))
	for _, c := range collections {
		out = append(out, ToResponse(c))
	}
	return out
}

func (h *Handler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Role(ctx) != domain.RoleCollector {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only collectors browse available collections"))
		return
	}
	collections, err := h.lister.AvailableCollections(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list available collections failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(collections))
}

func (h *Handler) handleAssigned(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Role(ctx) != domain.RoleCollector {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only collectors list their collections"))
		return
	}
	collections, err := h.lister.CollectorCollections(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "list collections failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(collections))
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseCollectionID(chi.URLParam(r, "collectionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.Decode[transitionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	actor := Actor{ID: requestcontext.UserID(ctx), Role: requestcontext.Role(ctx)}
	updated, err := h.engine.Transition(ctx, id, actor, Status(req.Status))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "transition failed", "error", err, "collection_id", id)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToResponse(updated))
}
