package worker

import (
	"context"
	"log"

	"pos-service/internal/broker"
	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// KitchenFeedWorker consumes ticket dispatch events and writes the
// kitchen feed. This is the push replacement for the old interval
// polling of the ticket queue: displays follow the event stream, the
// document stays the source of truth.
type KitchenFeedWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewKitchenFeedWorker creates a new kitchen feed worker
func NewKitchenFeedWorker(consumer *broker.Consumer) *KitchenFeedWorker {
	logger := util.GetLogger()
	eventHandler := broker.NewEventHandler()

	eventHandler.OnTicketDispatched(func(ctx context.Context, event *models.TicketDispatchedEvent) error {
		logger.Info("Ticket on the pass",
			zap.String("ticket_id", event.TicketID),
			zap.Int("table_id", event.TableID),
			zap.String("waiter", event.WaiterName),
			zap.Int("lines", len(event.Items)))
		return nil
	})

	return &KitchenFeedWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *KitchenFeedWorker) Start(ctx context.Context) error {
	log.Println("Starting kitchen feed worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *KitchenFeedWorker) Stop() error {
	log.Println("Stopping kitchen feed worker...")
	return w.consumer.Close()
}

// LedgerWorker tails the sale and abandon events for the back office:
// an audit trail of every commit point, independent of the serving
// request path.
type LedgerWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewLedgerWorker creates a new ledger worker
func NewLedgerWorker(consumer *broker.Consumer) *LedgerWorker {
	logger := util.GetLogger()
	eventHandler := broker.NewEventHandler()

	eventHandler.OnSaleRecorded(func(ctx context.Context, event *models.SaleRecordedEvent) error {
		logger.Info("Sale recorded",
			zap.String("sale_id", event.SaleID),
			zap.Int("table_id", event.TableID),
			zap.Int64("total", event.Total),
			zap.String("method", event.Method))
		return nil
	})

	eventHandler.OnOrderAbandoned(func(ctx context.Context, event *models.OrderAbandonedEvent) error {
		logger.Warn("Order abandoned without payment",
			zap.String("order_id", event.OrderID),
			zap.Int("table_id", event.TableID))
		return nil
	})

	return &LedgerWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *LedgerWorker) Start(ctx context.Context) error {
	log.Println("Starting ledger worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *LedgerWorker) Stop() error {
	log.Println("Stopping ledger worker...")
	return w.consumer.Close()
}
