package controllers

import (
	"net/http"

	"github.com/kidoralabs/kidora-backend/api/responses"
	dashboardsvc "github.com/kidoralabs/kidora-backend/internal/dashboard"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

func AdminDashboardOverview(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
