package service

import (
	"context"
	"sort"
	"time"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// KitchenService exposes the FIFO ticket queue consumed by kitchen
// staff.
type KitchenService struct {
	store      DocumentStore
	tableCount int
	logger     *zap.Logger
}

// NewKitchenService creates a new kitchen service
func NewKitchenService(store DocumentStore, tableCount int) *KitchenService {
	return &KitchenService{
		store:      store,
		tableCount: tableCount,
		logger:     util.GetLogger(),
	}
}

// PendingTickets returns undone tickets strictly ordered by creation
// time, oldest first. The sort is stable so ties keep insertion order.
// Urgency is a display concern and never reorders the queue.
func (s *KitchenService) PendingTickets(ctx context.Context) ([]models.KitchenTicket, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	pending := make([]models.KitchenTicket, 0, len(doc.KitchenTickets))
	for _, t := range doc.KitchenTickets {
		if !t.Done {
			pending = append(pending, t)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	return pending, nil
}

// FinishTicket marks a ticket done, removing it from the pending queue
// on the next read. Finishing an already-done ticket changes nothing.
func (s *KitchenService) FinishTicket(ctx context.Context, ticketID string) (*models.KitchenTicket, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	var ticket *models.KitchenTicket
	for i := range doc.KitchenTickets {
		if doc.KitchenTickets[i].ID == ticketID {
			ticket = &doc.KitchenTickets[i]
			break
		}
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	if ticket.Done {
		done := *ticket
		return &done, nil
	}

	now := time.Now()
	ticket.Done = true
	ticket.DoneAt = &now

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	util.TicketsFinishedTotal.Inc()
	s.logger.Info("Kitchen ticket finished",
		zap.String("ticket_id", ticket.ID),
		zap.Int("table_id", ticket.TableID))

	done := *ticket
	return &done, nil
}
