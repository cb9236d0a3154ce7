package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/api/responses"
	"github.com/warebound/fulfillment-backend/api/validators"
	"github.com/warebound/fulfillment-backend/internal/ledger"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

type adjustStockRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Type        string    `json:"type" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required"`
	Reference   *string   `json:"reference,omitempty"`
	PerformedBy uuid.UUID `json:"performed_by" validate:"required"`
}

// StockAdjust records one inbound, outbound, return or adjustment movement.
func StockAdjust(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		movement, err := svc.AdjustStock(r.Context(), ledger.AdjustStockInput{
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Type:        movementType,
			Quantity:    req.Quantity,
			Reference:   req.Reference,
			PerformedBy: req.PerformedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newMovementView(*movement))
	}
}

type transferStockRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	FromWarehouseID uuid.UUID `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   uuid.UUID `json:"to_warehouse_id" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,min=1"`
	Reference       *string   `json:"reference,omitempty"`
	PerformedBy     uuid.UUID `json:"performed_by" validate:"required"`
}

// StockTransfer moves stock between warehouses in one atomic operation.
func StockTransfer(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.TransferStock(r.Context(), ledger.TransferStockInput{
			ProductID:       req.ProductID,
			FromWarehouseID: req.FromWarehouseID,
			ToWarehouseID:   req.ToWarehouseID,
			Quantity:        req.Quantity,
			Reference:       req.Reference,
			PerformedBy:     req.PerformedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"movements": newMovementViews(movements),
		})
	}
}

// StockBalance returns the current on-hand quantity for a product at a
// warehouse.
func StockBalance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		warehouseID, err := validators.ParseQueryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), productID, warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBalanceView(balance))
	}
}

// StockMovements lists ledger history newest first with cursor pagination.
func StockMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ledger.MovementFilter{}
		var err error
		if filter.InventoryID, err = validators.ParseQueryUUID(r, "inventory_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.ProductID, err = validators.ParseQueryUUID(r, "product_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.WarehouseID, err = validators.ParseQueryUUID(r, "warehouse_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListMovements(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, movementListView{
			Movements:  newMovementViews(page.Movements),
			NextCursor: page.NextCursor,
		})
	}
}
