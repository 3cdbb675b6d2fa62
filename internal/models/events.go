package models

import "time"

// Event types
const (
	EventTypeTicketDispatched = "TICKET_DISPATCHED"
	EventTypeSaleRecorded     = "SALE_RECORDED"
	EventTypeOrderAbandoned   = "ORDER_ABANDONED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketDispatchedEvent published when an order is sent to the kitchen
type TicketDispatchedEvent struct {
	BaseEvent
	TicketID   string       `json:"ticket_id"`
	OrderID    string       `json:"order_id"`
	TableID    int          `json:"table_id"`
	WaiterName string       `json:"waiter_name"`
	Items      []TicketItem `json:"items"`
}

// SaleRecordedEvent published when a bill is closed and paid
type SaleRecordedEvent struct {
	BaseEvent
	SaleID     string    `json:"sale_id"`
	OrderID    string    `json:"order_id"`
	TableID    int       `json:"table_id"`
	Total      int64     `json:"total"`
	Method     string    `json:"method"`
	WaiterName string    `json:"waiter_name"`
	PaidAt     time.Time `json:"paid_at"`
}

// OrderAbandonedEvent published when a table is closed without payment
type OrderAbandonedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	TableID int    `json:"table_id"`
}
