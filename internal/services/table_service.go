package services

import (
	"context"
	"errors"

	"dinepos/internal/models"
	"dinepos/internal/repositories"

	"github.com/google/uuid"
)

type TableService interface {
	List(ctx context.Context, outletID uuid.UUID) ([]*models.TableView, error)
	Get(ctx context.Context, outletID, tableID uuid.UUID) (*models.TableView, error)
}

type tableService struct {
	store repositories.Store
}

func NewTableService(store repositories.Store) TableService {
	return &tableService{store: store}
}

func (s *tableService) List(ctx context.Context, outletID uuid.UUID) ([]*models.TableView, error) {
	tables, err := s.store.Tables().List(ctx, outletID)
	if err != nil {
		return nil, err
	}
	views := make([]*models.TableView, 0, len(tables))
	for _, t := range tables {
		views = append(views, &models.TableView{Table: t, DisplayStatus: t.DisplayStatus()})
	}
	return views, nil
}

func (s *tableService) Get(ctx context.Context, outletID, tableID uuid.UUID) (*models.TableView, error) {
	table, err := s.store.Tables().GetByID(ctx, outletID, tableID)
	if err != nil {
		return nil, notFoundAs(err, "table")
	}
	view := &models.TableView{Table: table, DisplayStatus: table.DisplayStatus()}

	active, err := s.store.Orders().ActiveByTable(ctx, outletID, tableID)
	switch {
	case err == nil:
		view.ActiveOrderID = &active.ID
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}
	return view, nil
}
