package service

import (
	"context"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// Bounds accepted for the configurable table count.
const (
	minTableCount = 1
	maxTableCount = 200
)

// TableService manages the table registry inside the document.
type TableService struct {
	store      DocumentStore
	tableCount int
	logger     *zap.Logger
}

// NewTableService creates a new table service
func NewTableService(store DocumentStore, tableCount int) *TableService {
	return &TableService{
		store:      store,
		tableCount: tableCount,
		logger:     util.GetLogger(),
	}
}

// List returns all tables in id order.
func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}
	return doc.Tables, nil
}

// Resize grows the registry by appending free tables with sequential
// ids, or shrinks it by removing the highest-numbered tables. A shrink
// is rejected entirely if any table in the removed range is occupied.
func (s *TableService) Resize(ctx context.Context, newCount int) ([]models.Table, error) {
	if newCount < minTableCount || newCount > maxTableCount {
		return nil, ErrInvalidTableCount
	}

	doc, err := loadDocument(ctx, s.store, s.tableCount)
	if err != nil {
		return nil, err
	}

	current := len(doc.Tables)
	if newCount == current {
		return doc.Tables, nil
	}

	if newCount < current {
		for _, t := range doc.Tables {
			if t.ID > newCount && t.Status == models.TableStatusOccupied {
				util.OrderOperationsFailed.WithLabelValues("resize", "occupied_range").Inc()
				return nil, ErrShrinkOccupied
			}
		}

		kept := make([]models.Table, 0, newCount)
		for _, t := range doc.Tables {
			if t.ID <= newCount {
				kept = append(kept, t)
			}
		}
		doc.Tables = kept
	} else {
		doc.Tables = append(doc.Tables, makeTables(current+1, newCount-current)...)
	}

	doc.TableCount = newCount

	if err := saveDocument(ctx, s.store, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Table registry resized",
		zap.Int("from", current),
		zap.Int("to", newCount))
	return doc.Tables, nil
}
