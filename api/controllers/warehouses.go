package controllers

import (
	"net/http"

	"github.com/warebound/fulfillment-backend/api/responses"
	"github.com/warebound/fulfillment-backend/internal/warehouses"
	"github.com/warebound/fulfillment-backend/pkg/logger"
)

// WarehousesList returns the active warehouses fulfillment can draw from.
func WarehousesList(repo warehouses.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := repo.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]warehouseView, 0, len(listed))
		for _, warehouse := range listed {
			views = append(views, warehouseView{
				ID:       warehouse.ID,
				Code:     warehouse.Code,
				Name:     warehouse.Name,
				IsActive: warehouse.IsActive,
			})
		}
		responses.WriteSuccess(w, map[string]any{"warehouses": views})
	}
}
