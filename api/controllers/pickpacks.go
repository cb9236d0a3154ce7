package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/api/responses"
	"github.com/warebound/fulfillment-backend/api/validators"
	"github.com/warebound/fulfillment-backend/internal/pickpack"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

type createPickPackRequest struct {
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Notes       *string   `json:"notes,omitempty"`
}

// PickPackCreate opens a pick/pack work order for a sales order.
func PickPackCreate(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPickPackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), pickpack.CreateInput{
			OrderID:     req.OrderID,
			WarehouseID: req.WarehouseID,
			Notes:       req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPickPackView(created))
	}
}

// PickPackList returns work orders newest first, optionally filtered by
// warehouse and status.
func PickPackList(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := pickpack.Filter{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
		}
		warehouseID, err := validators.ParseQueryUUID(r, "warehouse_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.WarehouseID = warehouseID

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view := pickPackListView{PickPacks: []pickPackView{}, NextCursor: page.NextCursor}
		for i := range page.PickPacks {
			view.PickPacks = append(view.PickPacks, newPickPackView(&page.PickPacks[i]))
		}
		responses.WriteSuccess(w, view)
	}
}

// PickPackDetail returns one work order with its items.
func PickPackDetail(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickPackID, err := validators.ParsePathUUID(chi.URLParam(r, "pickPackId"), "pickPackId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickPack, err := svc.GetByID(r.Context(), pickPackID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPickPackView(pickPack))
	}
}

// PickPackByOrder looks the work order up by its sales order.
func PickPackByOrder(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickPack, err := svc.GetByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPickPackView(pickPack))
	}
}

type actorRequest struct {
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
}

type pickPackTransition func(svc pickpack.Service, r *http.Request, pickPackID, actorID uuid.UUID) (any, error)

func pickPackTransitionHandler(svc pickpack.Service, logg *logger.Logger, fn pickPackTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickPackID, err := validators.ParsePathUUID(chi.URLParam(r, "pickPackId"), "pickPackId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req actorRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := fn(svc, r, pickPackID, req.ActorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PickPackStartPicking(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return pickPackTransitionHandler(svc, logg, func(svc pickpack.Service, r *http.Request, pickPackID, actorID uuid.UUID) (any, error) {
		pickPack, err := svc.StartPicking(r.Context(), pickPackID, actorID)
		if err != nil {
			return nil, err
		}
		return newPickPackView(pickPack), nil
	})
}

func PickPackCompletePicking(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return pickPackTransitionHandler(svc, logg, func(svc pickpack.Service, r *http.Request, pickPackID, actorID uuid.UUID) (any, error) {
		pickPack, err := svc.CompletePicking(r.Context(), pickPackID, actorID)
		if err != nil {
			return nil, err
		}
		return newPickPackView(pickPack), nil
	})
}

func PickPackStartPacking(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return pickPackTransitionHandler(svc, logg, func(svc pickpack.Service, r *http.Request, pickPackID, actorID uuid.UUID) (any, error) {
		pickPack, err := svc.StartPacking(r.Context(), pickPackID, actorID)
		if err != nil {
			return nil, err
		}
		return newPickPackView(pickPack), nil
	})
}

type completePackingRequest struct {
	ActorID      uuid.UUID `json:"actor_id" validate:"required"`
	PackageCount int       `json:"package_count" validate:"required,min=1"`
	WeightGrams  *int      `json:"weight_grams,omitempty"`
	Dimensions   *string   `json:"dimensions,omitempty"`
}

func PickPackCompletePacking(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickPackID, err := validators.ParsePathUUID(chi.URLParam(r, "pickPackId"), "pickPackId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req completePackingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickPack, err := svc.CompletePacking(r.Context(), pickPackID, req.ActorID, pickpack.PackDetails{
			WeightGrams:  req.WeightGrams,
			Dimensions:   req.Dimensions,
			PackageCount: req.PackageCount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPickPackView(pickPack))
	}
}

func PickPackMarkShipped(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return pickPackTransitionHandler(svc, logg, func(svc pickpack.Service, r *http.Request, pickPackID, actorID uuid.UUID) (any, error) {
		pickPack, err := svc.MarkAsShipped(r.Context(), pickPackID, actorID)
		if err != nil {
			return nil, err
		}
		return newPickPackView(pickPack), nil
	})
}

type cancelPickPackRequest struct {
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
	Reason  *string   `json:"reason,omitempty"`
}

func PickPackCancel(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickPackID, err := validators.ParsePathUUID(chi.URLParam(r, "pickPackId"), "pickPackId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelPickPackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pickPack, err := svc.Cancel(r.Context(), pickPackID, req.ActorID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPickPackView(pickPack))
	}
}

type updateItemRequest struct {
	Picked   *bool   `json:"picked,omitempty"`
	Packed   *bool   `json:"packed,omitempty"`
	Location *string `json:"location,omitempty"`
}

// PickPackUpdateItem toggles pick/pack flags on one item line.
func PickPackUpdateItem(svc pickpack.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pickPackID, err := validators.ParsePathUUID(chi.URLParam(r, "pickPackId"), "pickPackId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.Picked == nil && req.Packed == nil && req.Location == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "no item changes provided"))
			return
		}

		item, err := svc.UpdateItemStatus(r.Context(), pickpack.UpdateItemInput{
			PickPackID: pickPackID,
			ItemID:     itemID,
			Picked:     req.Picked,
			Packed:     req.Packed,
			Location:   req.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPickPackItemView(*item))
	}
}
