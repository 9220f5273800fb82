package usecase

import (
	"context"
	"time"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/payment/provider"

	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

type TransactionReader interface {
	FindByID(ctx context.Context, id uint) (*domain.PaymentTransaction, error)
	ListByTenant(ctx context.Context, tenantID int, limit int) ([]*domain.PaymentTransaction, error)
}

// PaymentStatusUseCase serves the transaction projection. A transaction that
// has sat unresolved past the poll threshold triggers an active gateway
// query, and a terminal answer is reconciled before responding.
type PaymentStatusUseCase struct {
	registry   *provider.Registry
	txRepo     TransactionReader
	configRepo ConfigReader
	reconciler Reconciler
	logger     *zap.Logger
	pollAfter  time.Duration
}

func NewPaymentStatusUseCase(
	registry *provider.Registry,
	txRepo TransactionReader,
	configRepo ConfigReader,
	reconciler Reconciler,
	logger *zap.Logger,
	pollAfter time.Duration,
) *PaymentStatusUseCase {
	return &PaymentStatusUseCase{
		registry:   registry,
		txRepo:     txRepo,
		configRepo: configRepo,
		reconciler: reconciler,
		logger:     logger,
		pollAfter:  pollAfter,
	}
}

func (uc *PaymentStatusUseCase) Status(ctx context.Context, act actor.Actor, transactionID uint) (*dto.TransactionStatusResponse, error) {
	tx, err := uc.txRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if !act.Superadmin() && tx.TenantID != act.TenantID {
		return nil, apperrors.NewForbiddenError("transaction belongs to another tenant")
	}

	if uc.shouldPoll(tx) {
		if polled := uc.pollGateway(ctx, tx); polled != nil {
			tx = polled
		}
	}

	return toStatusResponse(tx), nil
}

func (uc *PaymentStatusUseCase) shouldPoll(tx *domain.PaymentTransaction) bool {
	return !tx.Terminal() &&
		tx.ExternalReference != nil &&
		time.Since(tx.CreatedAt) > uc.pollAfter
}

// pollGateway is best effort: a gateway failure here degrades to serving the
// stored projection, never to an error.
func (uc *PaymentStatusUseCase) pollGateway(ctx context.Context, tx *domain.PaymentTransaction) *domain.PaymentTransaction {
	adapter, err := uc.registry.Get(tx.Provider)
	if err != nil {
		return nil
	}

	cfg, err := uc.configRepo.FindByTenantID(ctx, tx.TenantID)
	if err != nil {
		uc.logger.Warn("status poll skipped, config unavailable",
			zap.Uint("transactionId", tx.ID), zap.Error(err))
		return nil
	}

	result, err := adapter.CheckStatus(ctx, cfg, *tx.ExternalReference)
	if err != nil {
		uc.logger.Warn("gateway status query failed",
			zap.Uint("transactionId", tx.ID), zap.Error(err))
		return nil
	}

	if result.Status == dto.ResultStatusPending {
		return nil
	}

	resolved, err := uc.reconciler.Apply(ctx, result)
	if err != nil {
		uc.logger.Error("reconciling polled status failed",
			zap.Uint("transactionId", tx.ID), zap.Error(err))
		return nil
	}
	return resolved
}

func (uc *PaymentStatusUseCase) History(ctx context.Context, act actor.Actor, limit int) ([]*dto.TransactionStatusResponse, error) {
	if limit < 1 || limit > 200 {
		limit = defaultHistoryLimit
	}

	transactions, err := uc.txRepo.ListByTenant(ctx, act.TenantID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TransactionStatusResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = toStatusResponse(tx)
	}
	return responses, nil
}

func toStatusResponse(tx *domain.PaymentTransaction) *dto.TransactionStatusResponse {
	resp := &dto.TransactionStatusResponse{
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		Provider:      tx.Provider,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Status:        tx.Status,
		Stale:         tx.Stale,
		CreatedAt:     tx.CreatedAt,
		ResolvedAt:    tx.ResolvedAt,
	}
	if tx.ExternalReference != nil {
		resp.ExternalReference = *tx.ExternalReference
	}
	if tx.ResultCode != nil {
		resp.ResultCode = *tx.ResultCode
	}
	if tx.ResultDescription != nil {
		resp.ResultDescription = *tx.ResultDescription
	}
	return resp
}
