package usecase

import (
	"context"

	"comanda/internal/actor"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"

	"go.uber.org/zap"
)

type TableReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Table, error)
}

type StatusSetter interface {
	SetStatus(ctx context.Context, table *domain.Table, newStatus string) error
}

type UpdateTableStatusUseCase struct {
	tableRepo TableReader
	releaser  StatusSetter
	logger    *zap.Logger
}

func NewUpdateTableStatusUseCase(tableRepo TableReader, releaser StatusSetter, logger *zap.Logger) *UpdateTableStatusUseCase {
	return &UpdateTableStatusUseCase{
		tableRepo: tableRepo,
		releaser:  releaser,
		logger:    logger,
	}
}

func (uc *UpdateTableStatusUseCase) UpdateStatus(ctx context.Context, act actor.Actor, tableID uint, newStatus string) (*domain.Table, error) {
	if !domain.IsValidTableStatus(newStatus) {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be available, occupied, reserved or maintenance",
		})
	}

	table, err := uc.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if !act.Superadmin() && table.TenantID != act.TenantID {
		return nil, apperrors.NewForbiddenError("table belongs to another tenant")
	}

	if table.Status == newStatus {
		return table, nil
	}

	if err := uc.releaser.SetStatus(ctx, table, newStatus); err != nil {
		return nil, err
	}

	previous := table.Status
	table.Status = newStatus
	if newStatus == domain.TableStatusAvailable {
		table.CurrentOrderID = nil
	}

	uc.logger.Info("table status updated",
		zap.Uint("tableId", table.ID),
		zap.String("from", previous),
		zap.String("to", newStatus),
	)

	return table, nil
}

func (uc *UpdateTableStatusUseCase) Get(ctx context.Context, act actor.Actor, tableID uint) (*domain.Table, error) {
	table, err := uc.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		return nil, err
	}

	if !act.Superadmin() && table.TenantID != act.TenantID {
		return nil, apperrors.NewForbiddenError("table belongs to another tenant")
	}

	return table, nil
}
