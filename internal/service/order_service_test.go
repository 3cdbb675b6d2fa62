package service

import (
	"context"
	"testing"

	"pos-service/internal/models"
	"pos-service/internal/statestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTableCount = 12

// capturePublisher records published events instead of hitting Kafka.
type capturePublisher struct {
	tickets   []*models.TicketDispatchedEvent
	sales     []*models.SaleRecordedEvent
	abandoned []*models.OrderAbandonedEvent
}

func (p *capturePublisher) PublishTicketDispatched(ctx context.Context, event *models.TicketDispatchedEvent) error {
	p.tickets = append(p.tickets, event)
	return nil
}

func (p *capturePublisher) PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error {
	p.sales = append(p.sales, event)
	return nil
}

func (p *capturePublisher) PublishOrderAbandoned(ctx context.Context, event *models.OrderAbandonedEvent) error {
	p.abandoned = append(p.abandoned, event)
	return nil
}

func newTestOrderService() (*OrderService, *statestore.MemoryStore, *capturePublisher) {
	store := statestore.NewMemoryStore()
	publisher := &capturePublisher{}
	return NewOrderService(store, publisher, testTableCount), store, publisher
}

func TestOpenOrCreateIsIdempotent(t *testing.T) {
	svc, store, _ := newTestOrderService()
	ctx := context.Background()

	first, err := svc.OpenOrCreate(ctx, 5, "Ana")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 5, first.TableID)
	assert.Equal(t, "Ana", first.WaiterName)
	assert.Empty(t, first.Items)

	second, err := svc.OpenOrCreate(ctx, 5, "Luis")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Orders, 1)

	table := findTable(doc, 5)
	require.NotNil(t, table)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, first.ID, *table.CurrentOrderID)
}

func TestOpenOrCreateUnknownTable(t *testing.T) {
	svc, _, _ := newTestOrderService()

	_, err := svc.OpenOrCreate(context.Background(), 99, "Ana")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestAddAndDecrementItem(t *testing.T) {
	svc, _, _ := newTestOrderService()
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 3, "Ana")
	require.NoError(t, err)

	order, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	order, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Qty)

	order, err = svc.SetItemNote(ctx, order.ID, "p1", "  sin cebolla  ")
	require.NoError(t, err)
	assert.Equal(t, "sin cebolla", order.ItemNotes["p1"])

	order, err = svc.DecrementItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, order.Items[0].Qty)
	assert.Equal(t, "sin cebolla", order.ItemNotes["p1"])

	// Reaching zero removes the line and its note.
	order, err = svc.DecrementItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.NotContains(t, order.ItemNotes, "p1")

	_, err = svc.DecrementItem(ctx, order.ID, "p1")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestAddItemRejectsUnknownAndInactiveProducts(t *testing.T) {
	svc, store, _ := newTestOrderService()
	catalog := NewCatalogService(store, testTableCount)
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 1, "Ana")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, order.ID, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = catalog.ToggleActive(ctx, "p1")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, order.ID, "p1")
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestSetItemNoteRequiresLine(t *testing.T) {
	svc, _, _ := newTestOrderService()
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 2, "Ana")
	require.NoError(t, err)

	_, err = svc.SetItemNote(ctx, order.ID, "p1", "al clima")
	assert.ErrorIs(t, err, ErrLineNotFound)

	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)

	order, err = svc.SetItemNote(ctx, order.ID, "p1", "al clima")
	require.NoError(t, err)
	assert.Equal(t, "al clima", order.ItemNotes["p1"])

	// An empty note clears the entry.
	order, err = svc.SetItemNote(ctx, order.ID, "p1", "   ")
	require.NoError(t, err)
	assert.NotContains(t, order.ItemNotes, "p1")
}

func TestSendToKitchen(t *testing.T) {
	svc, store, publisher := newTestOrderService()
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 4, "Ana")
	require.NoError(t, err)

	_, err = svc.SendToKitchen(ctx, order.ID)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	_, err = svc.SetItemNote(ctx, order.ID, "p1", "término medio")
	require.NoError(t, err)

	ticket, err := svc.SendToKitchen(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, order.ID, ticket.OrderID)
	assert.Equal(t, 4, ticket.TableID)
	require.Len(t, ticket.Items, 1)
	assert.Equal(t, "p1", ticket.Items[0].ProductID)
	assert.Equal(t, "término medio", ticket.Items[0].Note)
	assert.False(t, ticket.Done)

	// A repeat send returns the existing ticket, never a duplicate.
	again, err := svc.SendToKitchen(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, again.ID)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.KitchenTickets, 1)
	assert.True(t, doc.Orders[order.ID].SentToKitchen)

	require.Len(t, publisher.tickets, 1)
	assert.Equal(t, ticket.ID, publisher.tickets[0].TicketID)
}

func TestCloseTable(t *testing.T) {
	svc, store, publisher := newTestOrderService()
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 5, "Ana")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)

	sale, err := svc.CloseTable(ctx, 5, models.MethodEfectivo, "")
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, int64(36000), sale.Total)
	assert.Equal(t, models.MethodEfectivo, sale.Method)
	assert.Equal(t, order.ID, sale.OrderID)
	assert.Equal(t, "Ana", sale.WaiterName)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, doc.Orders, order.ID)
	require.Len(t, doc.Sales, 1)

	table := findTable(doc, 5)
	require.NotNil(t, table)
	assert.Equal(t, models.TableStatusFree, table.Status)
	assert.Nil(t, table.CurrentOrderID)

	require.Len(t, publisher.sales, 1)
	assert.Equal(t, sale.ID, publisher.sales[0].SaleID)
	assert.Equal(t, int64(36000), publisher.sales[0].Total)
}

func TestCloseValidation(t *testing.T) {
	svc, _, _ := newTestOrderService()
	ctx := context.Background()

	_, err := svc.CloseTable(ctx, 5, "tarjeta", "")
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = svc.CloseTable(ctx, 5, models.MethodEfectivo, "")
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	_, err = svc.CloseAndPay(ctx, "missing", models.MethodEfectivo, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCloseUsesLivePrices(t *testing.T) {
	svc, store, _ := newTestOrderService()
	catalog := NewCatalogService(store, testTableCount)
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 6, "Ana")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)

	// The price changes after the item was added; the close-time total
	// follows the catalog.
	_, err = catalog.UpdateProduct(ctx, "p1", "Hamburguesa", "Comidas", 20000)
	require.NoError(t, err)

	sale, err := svc.CloseAndPay(ctx, order.ID, models.MethodTransferencia, "nequi")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), sale.Total)
	assert.Equal(t, "nequi", sale.Note)
}

func TestAbandon(t *testing.T) {
	svc, store, publisher := newTestOrderService()
	ctx := context.Background()

	order, err := svc.OpenOrCreate(ctx, 7, "Ana")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, order.ID))

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, doc.Orders, order.ID)
	assert.Empty(t, doc.Sales)

	table := findTable(doc, 7)
	require.NotNil(t, table)
	assert.Equal(t, models.TableStatusFree, table.Status)

	require.Len(t, publisher.abandoned, 1)
	assert.Equal(t, order.ID, publisher.abandoned[0].OrderID)

	assert.ErrorIs(t, svc.Abandon(ctx, order.ID), ErrOrderNotFound)
}

func TestGetTableOrderTotals(t *testing.T) {
	svc, _, _ := newTestOrderService()
	ctx := context.Background()

	_, _, _, err := svc.GetTableOrder(ctx, 8)
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	order, err := svc.OpenOrCreate(ctx, 8, "Ana")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, order.ID, "p1")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, order.ID, "p6")
	require.NoError(t, err)

	_, lines, total, err := svc.GetTableOrder(ctx, 8)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Hamburguesa", lines[0].Name)
	assert.Equal(t, int64(18000), lines[0].Subtotal)
	assert.Equal(t, int64(23000), total)
}
