package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warebound/fulfillment-backend/api/responses"
	"github.com/warebound/fulfillment-backend/api/validators"
	"github.com/warebound/fulfillment-backend/internal/shipping"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
)

type createInternationalRequest struct {
	OrderID            uuid.UUID       `json:"order_id" validate:"required"`
	OriginCountry      string          `json:"origin_country" validate:"required"`
	DestinationCountry string          `json:"destination_country" validate:"required"`
	DestinationCity    string          `json:"destination_city" validate:"required"`
	ShippingMethod     string          `json:"shipping_method" validate:"required"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	CustomsDuty        decimal.Decimal `json:"customs_duty"`
	ImportTax          decimal.Decimal `json:"import_tax"`
	HandlingFee        decimal.Decimal `json:"handling_fee"`
}

// InternationalCreate opens a cross-border shipping record.
func InternationalCreate(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createInternationalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseShippingMethod(req.ShippingMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping method"))
			return
		}

		created, err := svc.Create(r.Context(), shipping.CreateInternationalInput{
			OrderID:            req.OrderID,
			OriginCountry:      req.OriginCountry,
			DestinationCountry: req.DestinationCountry,
			DestinationCity:    req.DestinationCity,
			ShippingMethod:     method,
			ShippingCost:       req.ShippingCost,
			CustomsDuty:        req.CustomsDuty,
			ImportTax:          req.ImportTax,
			HandlingFee:        req.HandlingFee,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newInternationalShippingView(created))
	}
}

func InternationalDetail(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, newInternationalShippingView(record))
	}
}

func InternationalByOrder(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, newInternationalShippingView(record))
	}
}

// InternationalMarkShipped hands the shipment to the carrier.
func InternationalMarkShipped(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
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

		record, err := svc.MarkAsShipped(r.Context(), shippingID, req.TrackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInternationalShippingView(record))
	}
}

type customsEntryRequest struct {
	DeclarationNumber string `json:"declaration_number,omitempty"`
}

// InternationalMarkInCustoms stamps the customs hold on the shipment.
func InternationalMarkInCustoms(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req customsEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.MarkAsInCustoms(r.Context(), shippingID, req.DeclarationNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInternationalShippingView(record))
	}
}

func internationalTransitionHandler(
	logg *logger.Logger,
	fn func(r *http.Request, shippingID uuid.UUID) (any, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := fn(r, shippingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func InternationalClearCustoms(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return internationalTransitionHandler(logg, func(r *http.Request, shippingID uuid.UUID) (any, error) {
		record, err := svc.MarkAsClearedFromCustoms(r.Context(), shippingID)
		if err != nil {
			return nil, err
		}
		return newInternationalShippingView(record), nil
	})
}

func InternationalOutForDelivery(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return internationalTransitionHandler(logg, func(r *http.Request, shippingID uuid.UUID) (any, error) {
		record, err := svc.MarkAsOutForDelivery(r.Context(), shippingID)
		if err != nil {
			return nil, err
		}
		return newInternationalShippingView(record), nil
	})
}

func InternationalMarkDelivered(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return internationalTransitionHandler(logg, func(r *http.Request, shippingID uuid.UUID) (any, error) {
		record, err := svc.MarkAsDelivered(r.Context(), shippingID)
		if err != nil {
			return nil, err
		}
		return newInternationalShippingView(record), nil
	})
}

type updateCostsRequest struct {
	ShippingCost *decimal.Decimal `json:"shipping_cost,omitempty"`
	CustomsDuty  *decimal.Decimal `json:"customs_duty,omitempty"`
	ImportTax    *decimal.Decimal `json:"import_tax,omitempty"`
	HandlingFee  *decimal.Decimal `json:"handling_fee,omitempty"`
}

// InternationalUpdateCosts adjusts landed-cost components.
func InternationalUpdateCosts(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateCostsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.ShippingCost == nil && req.CustomsDuty == nil && req.ImportTax == nil && req.HandlingFee == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "no cost changes provided"))
			return
		}

		record, err := svc.UpdateCosts(r.Context(), shippingID, shipping.UpdateCostsInput{
			ShippingCost: req.ShippingCost,
			CustomsDuty:  req.CustomsDuty,
			ImportTax:    req.ImportTax,
			HandlingFee:  req.HandlingFee,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInternationalShippingView(record))
	}
}

// InternationalDelete soft-deletes the record.
func InternationalDelete(svc shipping.InternationalService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shippingID, err := validators.ParsePathUUID(chi.URLParam(r, "shippingId"), "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkAsDeleted(r.Context(), shippingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
