package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/api/middleware"
	"github.com/kidoralabs/kidora-backend/api/validators"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	pkgerrors "github.com/kidoralabs/kidora-backend/pkg/errors"
)

// actorID reads the authenticated user's id seeded by the auth middleware.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func isAdminActor(r *http.Request) bool {
	role := middleware.RoleFromContext(r.Context())
	return role == string(enums.RoleAdmin) || role == string(enums.RoleSubAdmin)
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	return validators.ParsePathUUID(chi.URLParam(r, param), param)
}
