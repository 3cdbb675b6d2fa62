package service

import (
	"context"
	"testing"

	"pos-service/internal/models"
	"pos-service/internal/statestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeBounds(t *testing.T) {
	svc := NewTableService(statestore.NewMemoryStore(), testTableCount)
	ctx := context.Background()

	_, err := svc.Resize(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidTableCount)

	_, err = svc.Resize(ctx, 201)
	assert.ErrorIs(t, err, ErrInvalidTableCount)
}

func TestResizeGrow(t *testing.T) {
	svc := NewTableService(statestore.NewMemoryStore(), testTableCount)
	ctx := context.Background()

	tables, err := svc.Resize(ctx, 15)
	require.NoError(t, err)
	require.Len(t, tables, 15)
	assert.Equal(t, 13, tables[12].ID)
	assert.Equal(t, 15, tables[14].ID)
	assert.Equal(t, models.TableStatusFree, tables[14].Status)
}

func TestResizeShrinkRejectedWhenRemovedRangeOccupied(t *testing.T) {
	store := statestore.NewMemoryStore()
	tables := NewTableService(store, testTableCount)
	orders := NewOrderService(store, nil, testTableCount)
	ctx := context.Background()

	_, err := orders.OpenOrCreate(ctx, 7, "Ana")
	require.NoError(t, err)

	// Table 7 sits in the removed range, so the whole shrink is refused
	// and the registry is untouched.
	_, err = tables.Resize(ctx, 5)
	assert.ErrorIs(t, err, ErrShrinkOccupied)

	current, err := tables.List(ctx)
	require.NoError(t, err)
	assert.Len(t, current, testTableCount)
}

func TestResizeShrinkKeepsOccupiedTablesBelowCut(t *testing.T) {
	store := statestore.NewMemoryStore()
	tables := NewTableService(store, testTableCount)
	orders := NewOrderService(store, nil, testTableCount)
	ctx := context.Background()

	order, err := orders.OpenOrCreate(ctx, 7, "Ana")
	require.NoError(t, err)

	resized, err := tables.Resize(ctx, 10)
	require.NoError(t, err)
	require.Len(t, resized, 10)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, doc.TableCount)

	table := findTable(doc, 7)
	require.NotNil(t, table)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, order.ID, *table.CurrentOrderID)
}

func TestResizeSameCountIsNoOp(t *testing.T) {
	svc := NewTableService(statestore.NewMemoryStore(), testTableCount)

	tables, err := svc.Resize(context.Background(), testTableCount)
	require.NoError(t, err)
	assert.Len(t, tables, testTableCount)
}
