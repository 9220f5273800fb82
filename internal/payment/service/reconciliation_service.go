package service

import (
	"context"
	"database/sql"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/infrastructure/metrics"
	"comanda/internal/notify"

	"go.uber.org/zap"
)

type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type TransactionStore interface {
	FindByID(ctx context.Context, id uint) (*domain.PaymentTransaction, error)
	FindByExternalReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error)
	FindByOrderAndKey(ctx context.Context, orderID uint, idempotencyKey string) (*domain.PaymentTransaction, error)
	ResolveTx(ctx context.Context, tx *sql.Tx, id uint, status, resultCode, resultDescription string) (bool, error)
}

type OrderStore interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id uint, method string) (bool, error)
}

type EventPublisher interface {
	Publish(ev notify.Event)
}

// ReconciliationService is the single writer for payment resolution. Every
// result funnels through Apply, whatever produced it: a gateway callback, a
// status poll, a cash settlement, or retry exhaustion. Duplicates die on the
// transaction's status guard.
type ReconciliationService struct {
	runner      TxRunner
	txRepo      TransactionStore
	orderRepo   OrderStore
	bus         EventPublisher
	paymentMetr *metrics.PaymentMetrics
	logger      *zap.Logger
}

func NewReconciliationService(
	runner TxRunner,
	txRepo TransactionStore,
	orderRepo OrderStore,
	bus EventPublisher,
	paymentMetr *metrics.PaymentMetrics,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		runner:      runner,
		txRepo:      txRepo,
		orderRepo:   orderRepo,
		bus:         bus,
		paymentMetr: paymentMetr,
		logger:      logger,
	}
}

// Apply resolves the transaction a result refers to and projects the outcome
// onto the order. Applying the same result twice is safe; the second pass is
// a no-op.
func (s *ReconciliationService) Apply(ctx context.Context, result *dto.PaymentResult) (*domain.PaymentTransaction, error) {
	tx, err := s.locate(ctx, result)
	if err != nil {
		return nil, err
	}

	if tx.Terminal() {
		s.logger.Info("duplicate payment result ignored",
			zap.Uint("transactionId", tx.ID),
			zap.String("status", tx.Status),
			zap.String("reference", result.ExternalReference),
		)
		s.paymentMetr.Reconciled.WithLabelValues(tx.Provider, "duplicate").Inc()
		return tx, nil
	}

	if result.Status == dto.ResultStatusPending {
		return tx, nil
	}

	newStatus := domain.TransactionStatusFailed
	if result.Status == dto.ResultStatusCompleted {
		newStatus = domain.TransactionStatusCompleted
	}

	var applied bool
	err = s.runner.InTx(ctx, func(dbTx *sql.Tx) error {
		applied, err = s.txRepo.ResolveTx(ctx, dbTx, tx.ID, newStatus, result.ResultCode, result.ResultDescription)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}

		if newStatus == domain.TransactionStatusCompleted {
			if _, err := s.orderRepo.MarkPaid(ctx, dbTx, tx.OrderID, tx.Provider); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		// A concurrent writer resolved first. Reload and report theirs.
		s.paymentMetr.Reconciled.WithLabelValues(tx.Provider, "duplicate").Inc()
		return s.txRepo.FindByID(ctx, tx.ID)
	}

	tx.Status = newStatus
	if result.ResultCode != "" {
		code := result.ResultCode
		tx.ResultCode = &code
	}
	if result.ResultDescription != "" {
		desc := result.ResultDescription
		tx.ResultDescription = &desc
	}

	s.paymentMetr.Reconciled.WithLabelValues(tx.Provider, newStatus).Inc()
	s.publish(ctx, tx, result)

	s.logger.Info("payment reconciled",
		zap.Uint("transactionId", tx.ID),
		zap.Uint("orderId", tx.OrderID),
		zap.String("provider", tx.Provider),
		zap.String("status", newStatus),
		zap.String("resultCode", result.ResultCode),
	)

	return tx, nil
}

// locate finds the transaction by the gateway reference first, falling back
// to the (order, idempotency key) pair for synthesized results that never
// reached a gateway.
func (s *ReconciliationService) locate(ctx context.Context, result *dto.PaymentResult) (*domain.PaymentTransaction, error) {
	if result.ExternalReference != "" {
		tx, err := s.txRepo.FindByExternalReference(ctx, result.ExternalReference)
		if err == nil {
			return tx, nil
		}
		if _, ok := apperrors.IsNotFoundError(err); !ok {
			return nil, err
		}
	}

	if result.OrderID != 0 && result.IdempotencyKey != "" {
		return s.txRepo.FindByOrderAndKey(ctx, result.OrderID, result.IdempotencyKey)
	}

	return nil, apperrors.NewNotFoundError("no transaction matches the payment result")
}

func (s *ReconciliationService) publish(ctx context.Context, tx *domain.PaymentTransaction, result *dto.PaymentResult) {
	orderNumber := ""
	if order, err := s.orderRepo.FindByID(ctx, tx.OrderID); err == nil {
		orderNumber = order.OrderNumber
	}

	reference := ""
	if tx.ExternalReference != nil {
		reference = *tx.ExternalReference
	}

	s.bus.Publish(notify.Event{
		Topic: notify.OrderTopic(tx.OrderID),
		Type:  notify.TypePaymentStatusUpdate,
		Payload: notify.PaymentStatusPayload{
			OrderID:       tx.OrderID,
			OrderNumber:   orderNumber,
			Status:        tx.Status,
			TransactionID: tx.ID,
			Reference:     reference,
			Amount:        tx.Amount,
			Currency:      tx.Currency,
			Message:       result.ResultDescription,
		},
	})
}
