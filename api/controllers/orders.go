package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/api/responses"
	"github.com/kidoralabs/kidora-backend/api/validators"
	ordersvc "github.com/kidoralabs/kidora-backend/internal/orders"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

type placeOrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type placeOrderRequest struct {
	CustomerName        string                  `json:"customerName" validate:"required"`
	Phone               string                  `json:"phone" validate:"required"`
	Address             string                  `json:"address" validate:"required"`
	City                *string                 `json:"city,omitempty"`
	State               *string                 `json:"state,omitempty"`
	PostalCode          *string                 `json:"postalCode,omitempty"`
	Country             *string                 `json:"country,omitempty"`
	Note                *string                 `json:"note,omitempty"`
	PaymentMethod       *string                 `json:"paymentMethod,omitempty"`
	PaymentProvider     *string                 `json:"paymentProvider,omitempty"`
	PaymentSenderNumber *string                 `json:"paymentSenderNumber,omitempty"`
	TransactionID       *string                 `json:"transactionId,omitempty"`
	Items               []placeOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func orderActor(r *http.Request) (ordersvc.Actor, error) {
	uid, err := actorID(r)
	if err != nil {
		return ordersvc.Actor{}, err
	}
	return ordersvc.Actor{UserID: uid, IsAdmin: isAdminActor(r)}, nil
}

func PlaceOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.PlaceOrderInput{
			CustomerName:        payload.CustomerName,
			Phone:               payload.Phone,
			Address:             payload.Address,
			City:                payload.City,
			State:               payload.State,
			PostalCode:          payload.PostalCode,
			Country:             payload.Country,
			Note:                payload.Note,
			PaymentMethod:       payload.PaymentMethod,
			PaymentProvider:     payload.PaymentProvider,
			PaymentSenderNumber: payload.PaymentSenderNumber,
			TransactionID:       payload.TransactionID,
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, ordersvc.PlaceOrderItemInput{
				ProductID: item.ProductID,
				Size:      item.Size,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.Place(r.Context(), uid, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func ListMyOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMine(r.Context(), uid, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// UpdateOrderStatus lets an order's owner move it between statuses.
// Ownership is enforced by the service, which reports a foreign order
// as not found.
func UpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actor, orderID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func CancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
