package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recircle/internal/audit"
	"recircle/internal/collection"
	"recircle/internal/ledger"
	"recircle/internal/profile"
	"recircle/internal/residue"
	"recircle/pkg/domain"
	"recircle/pkg/platform/tx"
	"recircle/pkg/testutil"
)

func newHandlerFixture(t *testing.T) (*chi.Mux, domain.UserID) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	runner := tx.NewMemoryRunner()

	residues := residue.NewMemoryStore()
	collections := collection.NewMemoryStore()
	profiles := profile.NewMemoryStore()
	engine := collection.NewEngine(runner, collections, residues, nil, audit.NopPublisher{}, log)
	ledgerSvc := ledger.NewService(runner, profiles, ledger.NewMemoryStore(), nil, audit.NopPublisher{}, log)
	service := NewService(runner, residues, collections, engine, ledgerSvc,
		ledger.FlatAward{Points: 10}, audit.NopPublisher{}, log)

	citizen := domain.NewUserID()
	require.NoError(t, profiles.Create(context.Background(),
		profile.Profile{UserID: citizen, Role: domain.RoleCitizen}))

	r := chi.NewRouter()
	NewHandler(service, log).Register(r)
	return r, citizen
}

func TestHandleSubmit(t *testing.T) {
	router, citizen := newHandlerFixture(t)

	t.Run("creates a residue", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues",
			strings.NewReader(`{"category":"plastic","weight":"1.5","location":"12 Green St"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, citizen, domain.RoleCitizen))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "awaiting_request", body["status"])
		assert.Equal(t, "1.5", body["weight"])
	})

	t.Run("non-citizens are forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues",
			strings.NewReader(`{"category":"plastic","units":2,"location":"12 Green St"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, domain.NewUserID(), domain.RoleCollector))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed weight is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues",
			strings.NewReader(`{"category":"plastic","weight":"heavy","location":"12 Green St"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, citizen, domain.RoleCitizen))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing quantity is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues",
			strings.NewReader(`{"category":"plastic","location":"12 Green St"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, citizen, domain.RoleCitizen))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRequestPickup(t *testing.T) {
	router, citizen := newHandlerFixture(t)

	submit := httptest.NewRequest(http.MethodPost, "/residues",
		strings.NewReader(`{"category":"glass","units":3,"location":"old mill"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAuth(submit, citizen, domain.RoleCitizen))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	t.Run("creates a requested collection", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues/"+created.ID+"/pickup", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, citizen, domain.RoleCitizen))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "requested", body["status"])
		assert.Equal(t, created.ID, body["residue_id"])
	})

	t.Run("second request conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues/"+created.ID+"/pickup", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, citizen, domain.RoleCitizen))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("bad residue id is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/residues/not-a-uuid/pickup", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAuth(req, citizen, domain.RoleCitizen))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
