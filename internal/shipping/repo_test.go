package shipping

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:shipping_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Shipping{}, &models.InternationalShipping{}))
	return conn
}

func seedShipping(t *testing.T, conn *gorm.DB) *models.Shipping {
	t.Helper()
	shipping := &models.Shipping{
		ID:       uuid.New(),
		OrderID:  uuid.New(),
		Provider: "fastship",
		Status:   enums.ShippingStatusPreparing,
	}
	require.NoError(t, conn.Create(shipping).Error)
	return shipping
}

func seedInternational(t *testing.T, conn *gorm.DB) *models.InternationalShipping {
	t.Helper()
	shipping := &models.InternationalShipping{
		ID:                 uuid.New(),
		OrderID:            uuid.New(),
		OriginCountry:      "DE",
		DestinationCountry: "JP",
		DestinationCity:    "Osaka",
		ShippingMethod:     enums.ShippingMethodAir,
		ShippingCost:       decimal.NewFromInt(40),
		CustomsDuty:        decimal.NewFromInt(5),
		ImportTax:          decimal.NewFromInt(3),
		HandlingFee:        decimal.NewFromInt(2),
		TotalCost:          decimal.NewFromInt(50),
		Status:             enums.ShippingStatusPreparing,
	}
	require.NoError(t, conn.Create(shipping).Error)
	return shipping
}

func TestRepositoryUpdateVersionedGuardsOnVersion(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	shipping := seedShipping(t, conn)

	err := repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
		"status": enums.ShippingStatusShipped,
	})
	require.NoError(t, err)

	var reloaded models.Shipping
	require.NoError(t, conn.First(&reloaded, "id = ?", shipping.ID).Error)
	assert.Equal(t, enums.ShippingStatusShipped, reloaded.Status)
	assert.Equal(t, shipping.Version+1, reloaded.Version)

	// Stale stamp: the row already moved on.
	err = repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
		"status": enums.ShippingStatusInTransit,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConcurrency, typed.Code())
}

func TestRepositoryFindByOrderID(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	shipping := seedShipping(t, conn)

	found, err := repo.FindByOrderID(ctx, shipping.OrderID)
	require.NoError(t, err)
	assert.Equal(t, shipping.ID, found.ID)

	_, err = repo.FindByOrderID(ctx, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestInternationalRepositoryHidesDeletedRecords(t *testing.T) {
	conn := openTestDB(t)
	repo := NewInternationalRepository(conn)
	ctx := context.Background()

	shipping := seedInternational(t, conn)

	found, err := repo.FindByID(ctx, shipping.ID)
	require.NoError(t, err)
	assert.Equal(t, shipping.OrderID, found.OrderID)

	require.NoError(t, repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
		"is_deleted": true,
	}))

	_, err = repo.FindByID(ctx, shipping.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	_, err = repo.FindByOrderID(ctx, shipping.OrderID)
	require.Error(t, err)
}

func TestInternationalRepositoryUpdateVersionedGuardsOnVersion(t *testing.T) {
	conn := openTestDB(t)
	repo := NewInternationalRepository(conn)
	ctx := context.Background()

	shipping := seedInternational(t, conn)

	require.NoError(t, repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
		"status": enums.ShippingStatusShipped,
	}))

	err := repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
		"status": enums.ShippingStatusInTransit,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConcurrency, typed.Code())
}
