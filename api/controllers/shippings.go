package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/api/responses"
	"github.com/warebound/fulfillment-backend/api/validators"
	"github.com/warebound/fulfillment-backend/internal/shipping"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
)

type createShippingRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	Provider  string    `json:"provider" validate:"required"`
	CostCents int       `json:"cost_cents" validate:"min=0"`
}

// ShippingCreate opens a domestic shipping record for an order.
func ShippingCreate(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createShippingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), shipping.CreateInput{
			OrderID:   req.OrderID,
			Provider:  req.Provider,
			CostCents: req.CostCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newShippingView(created))
	}
}

func ShippingDetail(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByID(r.Context(), shippingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingView(record))
	}
}

func ShippingByOrder(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingView(record))
	}
}

type trackingRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required"`
}

// ShippingUpdateTracking records the carrier handoff and marks the shipment
// shipped.
func ShippingUpdateTracking(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req trackingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateTracking(r.Context(), shippingID, req.TrackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingView(record))
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ShippingUpdateStatus applies a carrier scan event.
func ShippingUpdateStatus(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseShippingStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping status"))
			return
		}

		record, err := svc.UpdateStatus(r.Context(), shippingID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingView(record))
	}
}
