package testutil

import (
	"net/http"

	"recircle/pkg/domain"
	"recircle/pkg/requestcontext"
)

// WithAuth adds an authenticated actor to the request context, matching what
// the auth middleware would inject for a real request. Handler tests use it
// instead of minting real tokens.
func WithAuth(req *http.Request, userID domain.UserID, role domain.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}
