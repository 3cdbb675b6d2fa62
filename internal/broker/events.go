package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"pos-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing POS domain events. Events for the
// same table share a key so consumers see them in order.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishTicketDispatched publishes TicketDispatched event
func (ep *EventPublisher) PublishTicketDispatched(ctx context.Context, event *models.TicketDispatchedEvent) error {
	key := fmt.Sprintf("table-%d", event.TableID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishSaleRecorded publishes SaleRecorded event
func (ep *EventPublisher) PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error {
	key := fmt.Sprintf("table-%d", event.TableID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderAbandoned publishes OrderAbandoned event
func (ep *EventPublisher) PublishOrderAbandoned(ctx context.Context, event *models.OrderAbandonedEvent) error {
	key := fmt.Sprintf("table-%d", event.TableID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onTicketDispatched func(context.Context, *models.TicketDispatchedEvent) error
	onSaleRecorded     func(context.Context, *models.SaleRecordedEvent) error
	onOrderAbandoned   func(context.Context, *models.OrderAbandonedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnTicketDispatched registers a handler for TicketDispatched events
func (eh *EventHandler) OnTicketDispatched(handler func(context.Context, *models.TicketDispatchedEvent) error) {
	eh.onTicketDispatched = handler
}

// OnSaleRecorded registers a handler for SaleRecorded events
func (eh *EventHandler) OnSaleRecorded(handler func(context.Context, *models.SaleRecordedEvent) error) {
	eh.onSaleRecorded = handler
}

// OnOrderAbandoned registers a handler for OrderAbandoned events
func (eh *EventHandler) OnOrderAbandoned(handler func(context.Context, *models.OrderAbandonedEvent) error) {
	eh.onOrderAbandoned = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeTicketDispatched:
		if eh.onTicketDispatched != nil {
			var event models.TicketDispatchedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal TicketDispatched event: %w", err)
			}
			return eh.onTicketDispatched(ctx, &event)
		}

	case models.EventTypeSaleRecorded:
		if eh.onSaleRecorded != nil {
			var event models.SaleRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleRecorded event: %w", err)
			}
			return eh.onSaleRecorded(ctx, &event)
		}

	case models.EventTypeOrderAbandoned:
		if eh.onOrderAbandoned != nil {
			var event models.OrderAbandonedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderAbandoned event: %w", err)
			}
			return eh.onOrderAbandoned(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
