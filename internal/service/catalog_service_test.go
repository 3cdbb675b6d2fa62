package service

import (
	"context"
	"testing"

	"pos-service/internal/models"
	"pos-service/internal/statestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureInitializedFresh(t *testing.T) {
	doc := EnsureInitialized(nil, 12)

	require.NotNil(t, doc)
	assert.Equal(t, 12, doc.TableCount)
	require.Len(t, doc.Tables, 12)
	assert.Equal(t, 1, doc.Tables[0].ID)
	assert.Equal(t, 12, doc.Tables[11].ID)
	for _, table := range doc.Tables {
		assert.Equal(t, models.TableStatusFree, table.Status)
		assert.Nil(t, table.CurrentOrderID)
	}

	assert.Len(t, doc.Products, len(demoProducts))
	assert.Equal(t, []string{"Comidas", "Bebidas"}, doc.Categories)
	assert.NotNil(t, doc.Orders)
	assert.NotNil(t, doc.Sales)
	assert.NotNil(t, doc.Users)
	assert.NotNil(t, doc.KitchenTickets)
}

func TestEnsureInitializedIdempotent(t *testing.T) {
	doc := EnsureInitialized(nil, 12)

	// A complete document passes through untouched; pointer identity is
	// how callers decide whether to persist.
	same := EnsureInitialized(doc, 12)
	assert.Same(t, doc, same)
}

func TestEnsureInitializedFillsMissingCollections(t *testing.T) {
	partial := &models.Document{
		TableCount: 4,
		Tables:     makeTables(1, 4),
		Products:   []models.Product{{ID: "x1", Name: "Arepa", Price: 4000, Category: "Comidas", Active: true}},
	}

	fixed := EnsureInitialized(partial, 12)

	require.NotSame(t, partial, fixed)
	assert.Len(t, fixed.Tables, 4)
	require.Len(t, fixed.Products, 1)
	assert.Equal(t, "Arepa", fixed.Products[0].Name)
	assert.Equal(t, []string{"Comidas"}, fixed.Categories)
	assert.NotNil(t, fixed.Orders)
	assert.NotNil(t, fixed.Sales)
	assert.NotNil(t, fixed.KitchenTickets)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewCatalogService(statestore.NewMemoryStore(), testTableCount)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, "  ", "Comidas", 1000)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.CreateProduct(ctx, "Arepa", "", 1000)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.CreateProduct(ctx, "Arepa", "Comidas", 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.CreateProduct(ctx, "Arepa", "Comidas", -100)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateUpdateToggleProduct(t *testing.T) {
	store := statestore.NewMemoryStore()
	svc := NewCatalogService(store, testTableCount)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, " Arepa ", " Desayunos ", 4000)
	require.NoError(t, err)
	assert.Equal(t, "Arepa", created.Name)
	assert.Equal(t, "Desayunos", created.Category)
	assert.True(t, created.Active)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, "Desayunos")

	updated, err := svc.UpdateProduct(ctx, created.ID, "Arepa con Queso", "Desayunos", 5500)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(5500), updated.Price)

	toggled, err := svc.ToggleActive(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	active, err := svc.Products(ctx, true)
	require.NoError(t, err)
	for _, p := range active {
		assert.NotEqual(t, created.ID, p.ID)
	}

	all, err := svc.Products(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, len(demoProducts)+1)

	_, err = svc.UpdateProduct(ctx, "missing", "X", "Y", 1000)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.ToggleActive(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
