package statestore

import (
	"context"
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreEmptyLoad(t *testing.T) {
	store := NewMemoryStore()

	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	orderID := "o_1"
	doc := &models.Document{
		TableCount: 2,
		Tables: []models.Table{
			{ID: 1, Status: models.TableStatusOccupied, CurrentOrderID: &orderID},
			{ID: 2, Status: models.TableStatusFree},
		},
		Orders: map[string]*models.Order{
			orderID: {
				ID:        orderID,
				TableID:   1,
				Items:     []models.OrderItem{{ProductID: "p1", Qty: 2}},
				ItemNotes: map[string]string{"p1": "sin cebolla"},
			},
		},
		Sales:          []models.Sale{},
		Products:       []models.Product{{ID: "p1", Name: "Hamburguesa", Price: 18000, Category: "Comidas", Active: true}},
		Users:          []models.User{},
		Categories:     []string{"Comidas"},
		KitchenTickets: []models.KitchenTicket{},
	}

	require.NoError(t, store.Save(ctx, doc))
	raw := store.Raw()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, doc.TableCount, loaded.TableCount)
	require.NotNil(t, loaded.Tables[0].CurrentOrderID)
	assert.Equal(t, orderID, *loaded.Tables[0].CurrentOrderID)
	assert.Equal(t, "sin cebolla", loaded.Orders[orderID].ItemNotes["p1"])

	// Saving a loaded document reproduces the exact same blob.
	require.NoError(t, store.Save(ctx, loaded))
	assert.Equal(t, raw, store.Raw())
}

func TestMemoryStoreCorruptBlobReadsAsAbsent(t *testing.T) {
	store := NewMemoryStore()

	store.SetRaw([]byte("{not json"))

	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}
