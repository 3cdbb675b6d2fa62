package service

import (
	"context"
	"strings"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService drives the order lifecycle:
//
//	NEW -> OPEN (created on first open) -> SENT (dispatched to kitchen)
//	    -> CLOSED (paid, moved to the sales ledger)
//
// with ABANDONED as the terminal alternate (table closed without
// payment). Every mutation is a wholesale read-modify-write of the
// state document.
type OrderService struct {
	store      DocumentStore
	publisher  EventPublisher
	tableCount int
	logger     *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store DocumentStore, publisher EventPublisher, tableCount int) *OrderService {
	return &OrderService{
		store:      store,
		publisher:  publisher,
		tableCount: tableCount,
		logger:     util.GetLogger(),
	}
}

// OrderLine is an order item joined with live catalog data.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Qty       int    `json:"qty"`
	Note      string `json:"note,omitempty"`
	Subtotal  int64  `json:"subtotal"`
}

// OpenOrCreate returns the table's current order, creating an empty
// one and occupying the table if it was free. Safe to call repeatedly:
// it is a pure function of current state, so a second call returns the
// same order.
func (s *OrderService) OpenOrCreate(ctx context.Context, tableID int, waiterName string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.OpenOrCreate")
	defer span.End()

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	table := findTable(doc, tableID)
	if table == nil {
		return nil, ErrTableNotFound
	}

	if table.CurrentOrderID != nil {
		if order, ok := doc.Orders[*table.CurrentOrderID]; ok {
			return order, nil
		}
		// Dangling reference; fall through and restore the invariant
		// by creating a fresh order.
	}

	order := &models.Order{
		ID:         newID("o"),
		TableID:    tableID,
		Items:      []models.OrderItem{},
		CreatedAt:  time.Now(),
		WaiterName: waiterName,
	}

	doc.Orders[order.ID] = order
	table.Status = models.TableStatusOccupied
	orderID := order.ID
	table.CurrentOrderID = &orderID

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	util.OrdersOpenedTotal.Inc()
	s.logger.Info("Order opened",
		zap.String("order_id", order.ID),
		zap.Int("table_id", tableID),
		zap.String("waiter", waiterName))
	return order, nil
}

// GetOrder returns an order with its lines priced from the live
// catalog, plus the running total.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, []OrderLine, int64, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, nil, 0, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, nil, 0, ErrOrderNotFound
	}

	lines, total := detailLines(doc, order)
	return order, lines, total, nil
}

// GetTableOrder resolves the active order of a table.
func (s *OrderService) GetTableOrder(ctx context.Context, tableID int) (*models.Order, []OrderLine, int64, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, nil, 0, err
	}

	table := findTable(doc, tableID)
	if table == nil {
		return nil, nil, 0, ErrTableNotFound
	}
	if table.CurrentOrderID == nil {
		return nil, nil, 0, ErrNoActiveOrder
	}

	order, ok := doc.Orders[*table.CurrentOrderID]
	if !ok {
		return nil, nil, 0, ErrNoActiveOrder
	}

	lines, total := detailLines(doc, order)
	return order, lines, total, nil
}

// AddItem increments an existing line by one or appends a new line
// with qty 1. There is no upper bound on quantity.
func (s *OrderService) AddItem(ctx context.Context, orderID, productID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.AddItem")
	defer span.End()

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	product := findProduct(doc, productID)
	if product == nil {
		util.OrderOperationsFailed.WithLabelValues("add_item", "unknown_product").Inc()
		return nil, ErrProductNotFound
	}
	if !product.Active {
		util.OrderOperationsFailed.WithLabelValues("add_item", "inactive_product").Inc()
		return nil, ErrProductInactive
	}

	if item := findItem(order, productID); item != nil {
		item.Qty++
	} else {
		order.Items = append(order.Items, models.OrderItem{ProductID: productID, Qty: 1})
	}

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	util.OrderItemsAddedTotal.Inc()
	return order, nil
}

// DecrementItem lowers a line's quantity by one. Reaching zero removes
// the line and drops any note attached to it. A missing line is
// reported but changes nothing.
func (s *OrderService) DecrementItem(ctx context.Context, orderID, productID string) (*models.Order, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	item := findItem(order, productID)
	if item == nil {
		util.OrderOperationsFailed.WithLabelValues("decrement_item", "line_not_found").Inc()
		return nil, ErrLineNotFound
	}

	item.Qty--
	if item.Qty <= 0 {
		kept := order.Items[:0]
		for _, it := range order.Items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		order.Items = kept
		delete(order.ItemNotes, productID)
	}

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}
	return order, nil
}

// SetItemNote attaches a free-text note to an existing line. The text
// is trimmed; an empty result clears the note.
func (s *OrderService) SetItemNote(ctx context.Context, orderID, productID, note string) (*models.Order, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if findItem(order, productID) == nil {
		return nil, ErrLineNotFound
	}

	note = strings.TrimSpace(note)
	if note == "" {
		delete(order.ItemNotes, productID)
	} else {
		if order.ItemNotes == nil {
			order.ItemNotes = map[string]string{}
		}
		order.ItemNotes[productID] = note
	}

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}
	return order, nil
}

// SetCustomerName stores the optional customer name on the order.
func (s *OrderService) SetCustomerName(ctx context.Context, orderID, name string) (*models.Order, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	order.CustomerName = strings.TrimSpace(name)

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}
	return order, nil
}

// SendToKitchen dispatches the order as an immutable kitchen ticket
// snapshotting lines and notes. Requires at least one item. Idempotent:
// once sent, further sends return the existing ticket and never enqueue
// a duplicate.
func (s *OrderService) SendToKitchen(ctx context.Context, orderID string) (*models.KitchenTicket, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SendToKitchen")
	defer span.End()

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if len(order.Items) == 0 {
		util.OrderOperationsFailed.WithLabelValues("send_to_kitchen", "empty_order").Inc()
		return nil, ErrEmptyOrder
	}

	if order.SentToKitchen {
		for i := len(doc.KitchenTickets) - 1; i >= 0; i-- {
			if doc.KitchenTickets[i].OrderID == orderID {
				ticket := doc.KitchenTickets[i]
				return &ticket, nil
			}
		}
		return nil, nil
	}

	items := make([]models.TicketItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, models.TicketItem{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Note:      order.ItemNotes[it.ProductID],
		})
	}

	ticket := models.KitchenTicket{
		ID:         newID("t"),
		TableID:    order.TableID,
		OrderID:    order.ID,
		Items:      items,
		CreatedAt:  time.Now(),
		WaiterName: order.WaiterName,
	}

	order.SentToKitchen = true
	doc.KitchenTickets = append(doc.KitchenTickets, ticket)

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	util.TicketsDispatchedTotal.Inc()
	s.logger.Info("Order sent to kitchen",
		zap.String("order_id", order.ID),
		zap.String("ticket_id", ticket.ID),
		zap.Int("table_id", order.TableID))

	if s.publisher != nil {
		event := &models.TicketDispatchedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeTicketDispatched,
				Timestamp: time.Now(),
			},
			TicketID:   ticket.ID,
			OrderID:    order.ID,
			TableID:    order.TableID,
			WaiterName: order.WaiterName,
			Items:      ticket.Items,
		}
		if err := s.publisher.PublishTicketDispatched(ctx, event); err != nil {
			s.logger.Error("Failed to publish TicketDispatched event", zap.Error(err))
		}
	}

	return &ticket, nil
}

// CloseAndPay is the single commit point: it totals the order from
// live catalog prices, appends an immutable Sale to the ledger,
// deletes the order and frees its table. Price changes made after
// items were added do affect the close-time total; this is documented
// behavior, not a defect.
func (s *OrderService) CloseAndPay(ctx context.Context, orderID, method, note string) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CloseAndPay")
	defer span.End()

	if !models.ValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	return s.close(ctx, doc, order, method, note)
}

// CloseTable closes the bill for whatever order is active on the
// table. Selecting a table without an active order is refused.
func (s *OrderService) CloseTable(ctx context.Context, tableID int, method, note string) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CloseTable")
	defer span.End()

	if !models.ValidMethod(method) {
		return nil, ErrInvalidMethod
	}

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	table := findTable(doc, tableID)
	if table == nil {
		return nil, ErrTableNotFound
	}
	if table.CurrentOrderID == nil {
		util.OrderOperationsFailed.WithLabelValues("close", "no_active_order").Inc()
		return nil, ErrNoActiveOrder
	}

	order, ok := doc.Orders[*table.CurrentOrderID]
	if !ok {
		return nil, ErrNoActiveOrder
	}

	return s.close(ctx, doc, order, method, note)
}

func (s *OrderService) close(ctx context.Context, doc *models.Document, order *models.Order, method, note string) (*models.Sale, error) {
	note = strings.TrimSpace(note)
	paidAt := time.Now()

	var total int64
	for _, it := range order.Items {
		if p := findProduct(doc, it.ProductID); p != nil {
			total += p.Price * int64(it.Qty)
		}
	}

	order.Paid = true
	order.Payment = &models.PaymentInfo{
		Method: method,
		Note:   note,
		PaidAt: paidAt,
		Total:  total,
	}

	items := make([]models.OrderItem, len(order.Items))
	copy(items, order.Items)
	var notes map[string]string
	if len(order.ItemNotes) > 0 {
		notes = make(map[string]string, len(order.ItemNotes))
		for k, v := range order.ItemNotes {
			notes[k] = v
		}
	}

	sale := models.Sale{
		ID:           newID("s"),
		TableID:      order.TableID,
		OrderID:      order.ID,
		Total:        total,
		Method:       method,
		Note:         note,
		CreatedAt:    order.CreatedAt,
		PaidAt:       paidAt,
		Items:        items,
		ItemNotes:    notes,
		WaiterName:   order.WaiterName,
		CustomerName: order.CustomerName,
	}

	doc.Sales = append(doc.Sales, sale)
	delete(doc.Orders, order.ID)
	if table := findTable(doc, order.TableID); table != nil {
		table.Status = models.TableStatusFree
		table.CurrentOrderID = nil
	}

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	util.SalesClosedTotal.WithLabelValues(method).Inc()
	util.SalesRevenueTotal.Add(float64(total))
	s.logger.Info("Bill closed",
		zap.String("sale_id", sale.ID),
		zap.String("order_id", order.ID),
		zap.Int("table_id", order.TableID),
		zap.Int64("total", total),
		zap.String("method", method))

	if s.publisher != nil {
		event := &models.SaleRecordedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeSaleRecorded,
				Timestamp: time.Now(),
			},
			SaleID:     sale.ID,
			OrderID:    sale.OrderID,
			TableID:    sale.TableID,
			Total:      sale.Total,
			Method:     sale.Method,
			WaiterName: sale.WaiterName,
			PaidAt:     sale.PaidAt,
		}
		if err := s.publisher.PublishSaleRecorded(ctx, event); err != nil {
			s.logger.Error("Failed to publish SaleRecorded event", zap.Error(err))
		}
	}

	return &sale, nil
}

// Abandon deletes the order and frees its table without recording a
// sale.
func (s *OrderService) Abandon(ctx context.Context, orderID string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.Abandon")
	defer span.End()

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return err
	}

	order, ok := doc.Orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}

	delete(doc.Orders, orderID)
	if table := findTable(doc, order.TableID); table != nil {
		table.Status = models.TableStatusFree
		table.CurrentOrderID = nil
	}

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return err
	}

	util.OrdersAbandonedTotal.Inc()
	s.logger.Info("Order abandoned",
		zap.String("order_id", orderID),
		zap.Int("table_id", order.TableID))

	if s.publisher != nil {
		event := &models.OrderAbandonedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderAbandoned,
				Timestamp: time.Now(),
			},
			OrderID: orderID,
			TableID: order.TableID,
		}
		if err := s.publisher.PublishOrderAbandoned(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderAbandoned event", zap.Error(err))
		}
	}

	return nil
}

func detailLines(doc *models.Document, order *models.Order) ([]OrderLine, int64) {
	lines := make([]OrderLine, 0, len(order.Items))
	var total int64

	for _, it := range order.Items {
		line := OrderLine{
			ProductID: it.ProductID,
			Name:      "Producto",
			Qty:       it.Qty,
			Note:      order.ItemNotes[it.ProductID],
		}
		if p := findProduct(doc, it.ProductID); p != nil {
			line.Name = p.Name
			line.Price = p.Price
		}
		line.Subtotal = line.Price * int64(it.Qty)
		total += line.Subtotal
		lines = append(lines, line)
	}

	return lines, total
}
