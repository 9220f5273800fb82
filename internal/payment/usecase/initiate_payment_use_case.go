package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"comanda/internal/actor"
	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/infrastructure/metrics"
	"comanda/internal/payment/provider"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionWriter interface {
	Insert(ctx context.Context, tx *domain.PaymentTransaction) (uint, error)
	SetExternalReference(ctx context.Context, id uint, reference string) (bool, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
}

type ConfigReader interface {
	FindByTenantID(ctx context.Context, tenantID int) (*domain.TenantPaymentConfig, error)
}

type Reconciler interface {
	Apply(ctx context.Context, result *dto.PaymentResult) (*domain.PaymentTransaction, error)
}

// InitiatePaymentUseCase starts a payment collection. The transaction row is
// written before the first gateway call so a crash mid-flight leaves an
// auditable pending record instead of silence.
type InitiatePaymentUseCase struct {
	registry    *provider.Registry
	txRepo      TransactionWriter
	orderRepo   OrderReader
	configRepo  ConfigReader
	reconciler  Reconciler
	paymentMetr *metrics.PaymentMetrics
	logger      *zap.Logger
	maxAttempts int
}

func NewInitiatePaymentUseCase(
	registry *provider.Registry,
	txRepo TransactionWriter,
	orderRepo OrderReader,
	configRepo ConfigReader,
	reconciler Reconciler,
	paymentMetr *metrics.PaymentMetrics,
	logger *zap.Logger,
	maxAttempts int,
) *InitiatePaymentUseCase {
	return &InitiatePaymentUseCase{
		registry:    registry,
		txRepo:      txRepo,
		orderRepo:   orderRepo,
		configRepo:  configRepo,
		reconciler:  reconciler,
		paymentMetr: paymentMetr,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

func (uc *InitiatePaymentUseCase) Initiate(ctx context.Context, act actor.Actor, providerName string, req dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	adapter, err := uc.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	if err := validateInitiateRequest(providerName, req); err != nil {
		return nil, err
	}

	order, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !act.Superadmin() && order.TenantID != act.TenantID {
		return nil, apperrors.NewForbiddenError("order belongs to another tenant")
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order %s is cancelled", order.OrderNumber))
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order %s is already paid", order.OrderNumber))
	}
	if math.Abs(req.Amount-order.Total) > 0.009 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "amount",
			Message: fmt.Sprintf("amount must equal the order total %.2f", order.Total),
		})
	}

	cfg, err := uc.configRepo.FindByTenantID(ctx, order.TenantID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewConfigurationError("tenant has no payment configuration")
		}
		return nil, err
	}
	if err := checkProviderEnabled(providerName, cfg); err != nil {
		return nil, err
	}

	// Bad phone numbers fail here, synchronously, before anything is
	// persisted or any gateway is contacted.
	payerReference := req.PayerReference
	if providerName == domain.ProviderMpesa {
		payerReference, err = provider.NormalizeMSISDN(req.PayerReference, cfg.DefaultCurrency)
		if err != nil {
			return nil, err
		}
	}

	tx := &domain.PaymentTransaction{
		TenantID:       order.TenantID,
		OrderID:        order.ID,
		Provider:       providerName,
		PayerReference: payerReference,
		Amount:         req.Amount,
		Currency:       cfg.DefaultCurrency,
		Status:         domain.TransactionStatusPending,
		IdempotencyKey: uuid.New().String(),
	}

	id, err := uc.txRepo.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id

	uc.paymentMetr.Initiated.WithLabelValues(providerName).Inc()

	if providerName == domain.ProviderCash {
		return uc.settleCash(ctx, tx)
	}

	result, err := uc.callGateway(ctx, adapter, cfg, tx, order)
	if err != nil {
		// Only exhausted gateway retries resolve the transaction as
		// unreachable; any other error surfaces to the caller and leaves
		// the pending row for the stale sweeper.
		if _, ok := apperrors.IsGatewayError(err); ok {
			return uc.resolveUnreachable(ctx, tx, err)
		}
		return nil, err
	}

	if !result.Accepted {
		uc.applyResult(ctx, &dto.PaymentResult{
			Provider:          providerName,
			Status:            dto.ResultStatusFailed,
			OrderID:           tx.OrderID,
			IdempotencyKey:    tx.IdempotencyKey,
			ResultCode:        result.ResponseCode,
			ResultDescription: result.ResponseDescription,
		})
		return &dto.InitiatePaymentResponse{
			TransactionID: tx.ID,
			Status:        domain.TransactionStatusFailed,
		}, nil
	}

	if _, err := uc.txRepo.SetExternalReference(ctx, tx.ID, result.ExternalReference); err != nil {
		return nil, err
	}

	uc.logger.Info("payment initiated",
		zap.Uint("transactionId", tx.ID),
		zap.Uint("orderId", order.ID),
		zap.String("provider", providerName),
		zap.String("externalReference", result.ExternalReference),
	)

	return &dto.InitiatePaymentResponse{
		TransactionID:     tx.ID,
		ExternalReference: result.ExternalReference,
		Status:            domain.TransactionStatusProcessing,
	}, nil
}

// callGateway retries transient failures with jittered exponential backoff.
// Anything other than a GatewayError aborts immediately.
func (uc *InitiatePaymentUseCase) callGateway(ctx context.Context, adapter provider.Adapter, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*provider.InitiationResult, error) {
	var lastErr error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		start := time.Now()
		result, err := adapter.Initiate(ctx, cfg, tx, order)
		uc.paymentMetr.ObserveGateway(adapter.Name(), start)
		if err == nil {
			return result, nil
		}
		if _, ok := apperrors.IsGatewayError(err); !ok {
			return nil, err
		}

		lastErr = err
		uc.logger.Warn("gateway initiation attempt failed",
			zap.Uint("transactionId", tx.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < uc.maxAttempts {
			backoff := time.Duration(1<<uint(attempt-1)) * 500 * time.Millisecond
			jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}
	}
	return nil, lastErr
}

func (uc *InitiatePaymentUseCase) settleCash(ctx context.Context, tx *domain.PaymentTransaction) (*dto.InitiatePaymentResponse, error) {
	resolved, err := uc.reconciler.Apply(ctx, &dto.PaymentResult{
		Provider:          domain.ProviderCash,
		Status:            dto.ResultStatusCompleted,
		OrderID:           tx.OrderID,
		IdempotencyKey:    tx.IdempotencyKey,
		ResultCode:        "0",
		ResultDescription: "cash received",
		Amount:            tx.Amount,
	})
	if err != nil {
		return nil, err
	}

	return &dto.InitiatePaymentResponse{
		TransactionID: resolved.ID,
		Status:        resolved.Status,
	}, nil
}

func (uc *InitiatePaymentUseCase) resolveUnreachable(ctx context.Context, tx *domain.PaymentTransaction, cause error) (*dto.InitiatePaymentResponse, error) {
	uc.logger.Error("gateway unreachable, failing transaction",
		zap.Uint("transactionId", tx.ID),
		zap.String("provider", tx.Provider),
		zap.Error(cause),
	)

	uc.applyResult(ctx, &dto.PaymentResult{
		Provider:          tx.Provider,
		Status:            dto.ResultStatusFailed,
		OrderID:           tx.OrderID,
		IdempotencyKey:    tx.IdempotencyKey,
		ResultCode:        domain.ResultCodeGatewayUnreachable,
		ResultDescription: "payment gateway unreachable after retries",
	})

	return &dto.InitiatePaymentResponse{
		TransactionID: tx.ID,
		Status:        domain.TransactionStatusFailed,
	}, nil
}

func (uc *InitiatePaymentUseCase) applyResult(ctx context.Context, result *dto.PaymentResult) {
	if _, err := uc.reconciler.Apply(ctx, result); err != nil {
		uc.logger.Error("applying synthesized payment result failed",
			zap.Uint("orderId", result.OrderID),
			zap.Error(err),
		)
	}
}

func validateInitiateRequest(providerName string, req dto.InitiatePaymentRequest) error {
	var details []apperrors.ValidationDetail

	if req.OrderID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		})
	}
	if req.Amount <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be positive",
		})
	}
	if providerName == domain.ProviderMpesa && req.PayerReference == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "payerReference",
			Message: "phone number is required for mobile money payments",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func checkProviderEnabled(providerName string, cfg *domain.TenantPaymentConfig) error {
	switch providerName {
	case domain.ProviderMpesa:
		if !cfg.MobileMoney.Enabled {
			return apperrors.NewConfigurationError("mobile money payments are disabled for this tenant")
		}
		if !cfg.MobileMoney.Complete() {
			return apperrors.NewConfigurationError("mobile money configuration is incomplete")
		}
	case domain.ProviderCard:
		if !cfg.Card.Enabled {
			return apperrors.NewConfigurationError("card payments are disabled for this tenant")
		}
		if !cfg.Card.Complete() {
			return apperrors.NewConfigurationError("card configuration is incomplete")
		}
	case domain.ProviderCash:
		if !cfg.CashEnabled {
			return apperrors.NewConfigurationError("cash payments are disabled for this tenant")
		}
	}
	return nil
}
