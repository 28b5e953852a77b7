package workflow

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"recircle/internal/collection"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	dErrors "recircle/pkg/domain-errors"
	"recircle/pkg/platform/httputil"
	"recircle/pkg/requestcontext"
)

// Handler exposes the citizen and recycler lifecycle endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/residues", h.handleSubmit)
	r.Get("/residues", h.handleListResidues)
	r.Post("/residues/{residueID}/pickup", h.handleRequestPickup)
	r.Post("/collections/{collectionID}/process", h.handleProcess)
}

type submitRequest struct {
	Category string  `json:"category"`
	Weight   *string `json:"weight,omitempty"`
	Units    *int    `json:"units,omitempty"`
	Location string  `json:"location"`
}

type residueResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Weight    *string   `json:"weight,omitempty"`
	Units     *int      `json:"units,omitempty"`
	Location  string    `json:"location"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toResidueResponse(r residue.Residue) residueResponse {
	resp := residueResponse{
		ID:        r.ID.String(),
		Category:  r.Category,
		Units:     r.Units,
		Location:  r.Location,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
	if r.Weight != nil {
		w := r.Weight.String()
		resp.Weight = &w
	}
	return resp
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Role(ctx) != domain.RoleCitizen {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only citizens submit residues"))
		return
	}
	req, err := httputil.Decode[submitRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	input := SubmitInput{Category: req.Category, Units: req.Units, Location: req.Location}
	if req.Weight != nil {
		weight, err := decimal.NewFromString(*req.Weight)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "weight must be a decimal number"))
			return
		}
		input.Weight = &weight
	}

	created, err := h.service.SubmitResidue(ctx, requestcontext.UserID(ctx), input)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "submit residue failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResidueResponse(created))
}

func (h *Handler) handleListResidues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Role(ctx) != domain.RoleCitizen {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only citizens list their residues"))
		return
	}
	residues, err := h.service.CitizenResidues(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "list residues failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]residueResponse, 0, len(residues))
	for _, res := range residues {
		out = append(out, toResidueResponse(res))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRequestPickup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Role(ctx) != domain.RoleCitizen {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only citizens request pickups"))
		return
	}
	residueID, err := domain.ParseResidueID(chi.URLParam(r, "residueID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	created, err := h.service.RequestPickup(ctx, requestcontext.UserID(ctx), residueID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "request pickup failed", "error", err, "residue_id", residueID)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, collection.ToResponse(created))
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Role(ctx) != domain.RoleRecycler {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only recyclers mark collections processed"))
		return
	}
	collectionID, err := domain.ParseCollectionID(chi.URLParam(r, "collectionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	processed, err := h.service.ProcessDelivered(ctx, requestcontext.UserID(ctx), collectionID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "process collection failed", "error", err, "collection_id", collectionID)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, collection.ToResponse(processed))
}
