package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"github.com/google/uuid"
)

// DocumentStore is the wholesale persistence contract for the POS
// state blob. Load returns (nil, nil) when no document exists yet;
// Save overwrites the whole document. There are no partial writes and
// no locking, so concurrent writers are last-write-wins.
type DocumentStore interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

// EventPublisher publishes POS domain events. A nil publisher disables
// eventing; publish failures never fail the user operation.
type EventPublisher interface {
	PublishTicketDispatched(ctx context.Context, event *models.TicketDispatchedEvent) error
	PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error
	PublishOrderAbandoned(ctx context.Context, event *models.OrderAbandonedEvent) error
}

// Operation errors surfaced to the API layer. None of these are fatal:
// the operation is refused and the caller informed.
var (
	ErrTableNotFound     = errors.New("table not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrNoActiveOrder     = errors.New("table has no active order")
	ErrLineNotFound      = errors.New("order line not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is inactive")
	ErrTicketNotFound    = errors.New("kitchen ticket not found")
	ErrInvalidTableCount = errors.New("table count must be between 1 and 200")
	ErrShrinkOccupied    = errors.New("cannot shrink: occupied tables in removed range")
	ErrInvalidMethod     = errors.New("unknown payment method")
	ErrInvalidPrice      = errors.New("price must be a positive number")
	ErrMissingFields     = errors.New("missing required fields")
	ErrInvalidRole       = errors.New("unknown role")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBadCredentials    = errors.New("invalid credentials")
)

// loadDocument reads the current state and runs EnsureInitialized on
// it. When initialization changed anything the repaired document is
// persisted immediately, so every caller operates on a complete blob.
func loadDocument(ctx context.Context, store DocumentStore, tableCount int) (*models.Document, error) {
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	next := EnsureInitialized(doc, tableCount)
	if next != doc {
		if err := saveDocument(ctx, store, next); err != nil {
			return nil, err
		}
	}

	return next, nil
}

func saveDocument(ctx context.Context, store DocumentStore, doc *models.Document) error {
	start := time.Now()
	defer func() {
		util.StateSaveLatency.Observe(time.Since(start).Seconds())
	}()

	if err := store.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func findTable(doc *models.Document, tableID int) *models.Table {
	for i := range doc.Tables {
		if doc.Tables[i].ID == tableID {
			return &doc.Tables[i]
		}
	}
	return nil
}

func findProduct(doc *models.Document, productID string) *models.Product {
	for i := range doc.Products {
		if doc.Products[i].ID == productID {
			return &doc.Products[i]
		}
	}
	return nil
}

func findItem(order *models.Order, productID string) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			return &order.Items[i]
		}
	}
	return nil
}

func newID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}
