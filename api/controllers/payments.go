package controllers

import (
	"net/http"

	"github.com/kidoralabs/kidora-backend/api/responses"
	"github.com/kidoralabs/kidora-backend/api/validators"
	paymentsvc "github.com/kidoralabs/kidora-backend/internal/paymentconfig"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

type updatePaymentConfigRequest struct {
	BkashNumber  *string `json:"bkashNumber,omitempty"`
	NagadNumber  *string `json:"nagadNumber,omitempty"`
	RocketNumber *string `json:"rocketNumber,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// PublicPaymentConfig exposes the masked wallet numbers shown at checkout.
func PublicPaymentConfig(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.Public(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

func AdminGetPaymentConfig(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.AdminGet(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

func AdminUpdatePaymentConfig(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updatePaymentConfigRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.AdminUpdate(r.Context(), paymentsvc.UpdateInput{
			BkashNumber:  payload.BkashNumber,
			NagadNumber:  payload.NagadNumber,
			RocketNumber: payload.RocketNumber,
			Instructions: payload.Instructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}
