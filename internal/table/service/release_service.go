package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"

	"go.uber.org/zap"
)

type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type ActiveOrderLister interface {
	ActiveOrderNumbersByTable(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error)
}

type TableWriter interface {
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error
}

// ReleaseService owns the transition of a table back to available. The check
// for blocking orders and the status write run in one transaction with the
// order rows locked, so a payment landing mid-release cannot slip past the
// guard.
type ReleaseService struct {
	runner    TxRunner
	orderRepo ActiveOrderLister
	tableRepo TableWriter
	logger    *zap.Logger
}

func NewReleaseService(runner TxRunner, orderRepo ActiveOrderLister, tableRepo TableWriter, logger *zap.Logger) *ReleaseService {
	return &ReleaseService{
		runner:    runner,
		orderRepo: orderRepo,
		tableRepo: tableRepo,
		logger:    logger,
	}
}

// SetStatus applies a table status change. Releasing to available is guarded;
// every other transition is written directly.
func (s *ReleaseService) SetStatus(ctx context.Context, table *domain.Table, newStatus string) error {
	return s.runner.InTx(ctx, func(tx *sql.Tx) error {
		if newStatus == domain.TableStatusAvailable {
			return s.release(ctx, tx, table)
		}
		return s.tableRepo.UpdateStatusTx(ctx, tx, table.ID, newStatus, table.CurrentOrderID)
	})
}

func (s *ReleaseService) release(ctx context.Context, tx *sql.Tx, table *domain.Table) error {
	blocking, err := s.orderRepo.ActiveOrderNumbersByTable(ctx, tx, table.ID)
	if err != nil {
		return err
	}

	if len(blocking) > 0 {
		s.logger.Info("table release blocked",
			zap.Uint("tableId", table.ID),
			zap.Strings("blockingOrders", blocking),
		)
		return apperrors.NewConflictError(
			fmt.Sprintf("table %s has unfinished orders: %s", table.TableNumber, strings.Join(blocking, ", ")),
			blocking...,
		)
	}

	return s.tableRepo.UpdateStatusTx(ctx, tx, table.ID, domain.TableStatusAvailable, nil)
}
