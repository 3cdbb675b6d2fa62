package models

import "time"

// User roles
const (
	RoleMesero  = "mesero"
	RoleCocina  = "cocina"
	RoleGerente = "gerente"
)

// Table statuses
const (
	TableStatusFree     = "free"
	TableStatusOccupied = "occupied"
)

// Payment methods
const (
	MethodEfectivo      = "efectivo"
	MethodTransferencia = "transferencia"
	MethodOtro          = "otro"
)

// DefaultTableCount is used when a fresh document is initialized.
const DefaultTableCount = 12

// Product represents a sellable item in the catalog. Prices are COP
// without minor units. Deactivated products stay in the catalog so
// historical reports can still resolve them.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
}

// Table is a physical seating unit. CurrentOrderID is set exactly
// while Status is occupied.
type Table struct {
	ID             int     `json:"id"`
	Status         string  `json:"status"`
	CurrentOrderID *string `json:"currentOrderId"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// PaymentInfo is recorded on the order at close time.
type PaymentInfo struct {
	Method string    `json:"method"`
	Note   string    `json:"note"`
	PaidAt time.Time `json:"paidAt"`
	Total  int64     `json:"total"`
}

// Order is the editable cart bound to one occupied table.
type Order struct {
	ID            string            `json:"id"`
	TableID       int               `json:"tableId"`
	Items         []OrderItem       `json:"items"`
	ItemNotes     map[string]string `json:"itemNotes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	SentToKitchen bool              `json:"sentToKitchen"`
	Paid          bool              `json:"paid"`
	Payment       *PaymentInfo      `json:"payment,omitempty"`
	WaiterName    string            `json:"waiterName"`
	CustomerName  string            `json:"customerName"`
}

// TicketItem is an order line snapshotted into a kitchen ticket,
// carrying its note along for the kitchen display.
type TicketItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
	Note      string `json:"note,omitempty"`
}

// KitchenTicket is the immutable dispatch of an order to the kitchen.
// The pending queue is strictly FIFO by CreatedAt.
type KitchenTicket struct {
	ID         string       `json:"id"`
	TableID    int          `json:"tableId"`
	OrderID    string       `json:"orderId"`
	Items      []TicketItem `json:"items"`
	CreatedAt  time.Time    `json:"createdAt"`
	WaiterName string       `json:"waiterName"`
	Done       bool         `json:"done"`
	DoneAt     *time.Time   `json:"doneAt,omitempty"`
}

// Sale is the append-only record of a paid, closed bill. Items and
// notes are snapshots taken at close time; Sale rows are never mutated.
type Sale struct {
	ID           string            `json:"id"`
	TableID      int               `json:"tableId"`
	OrderID      string            `json:"orderId"`
	Total        int64             `json:"total"`
	Method       string            `json:"method"`
	Note         string            `json:"note"`
	CreatedAt    time.Time         `json:"createdAt"`
	PaidAt       time.Time         `json:"paidAt"`
	Items        []OrderItem       `json:"items"`
	ItemNotes    map[string]string `json:"itemNotes,omitempty"`
	WaiterName   string            `json:"waiterName"`
	CustomerName string            `json:"customerName"`
}

// User is an operator account. Credentials live in Postgres; the hash
// is never serialized.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Document is the root POS state blob. It is loaded and saved
// wholesale; there are no partial writes.
type Document struct {
	TableCount     int               `json:"tableCount"`
	Tables         []Table           `json:"tables"`
	Orders         map[string]*Order `json:"orders"`
	Sales          []Sale            `json:"sales"`
	Products       []Product         `json:"products"`
	Users          []User            `json:"users"`
	Categories     []string          `json:"categories"`
	KitchenTickets []KitchenTicket   `json:"kitchenTickets"`
}

// ValidRole reports whether role is one of the known operator roles.
func ValidRole(role string) bool {
	switch role {
	case RoleMesero, RoleCocina, RoleGerente:
		return true
	}
	return false
}

// ValidMethod reports whether method is a supported payment method.
func ValidMethod(method string) bool {
	switch method {
	case MethodEfectivo, MethodTransferencia, MethodOtro:
		return true
	}
	return false
}
