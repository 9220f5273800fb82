package usecase

import (
	"context"

	"comanda/internal/domain"
	"comanda/internal/dto"
	"comanda/internal/payment/provider"
)

type mockTransactionRepo struct {
	insertFn       func(ctx context.Context, tx *domain.PaymentTransaction) (uint, error)
	setReferenceFn func(ctx context.Context, id uint, reference string) (bool, error)
	findByIDFn     func(ctx context.Context, id uint) (*domain.PaymentTransaction, error)
	listFn         func(ctx context.Context, tenantID int, limit int) ([]*domain.PaymentTransaction, error)
}

func (m *mockTransactionRepo) Insert(ctx context.Context, tx *domain.PaymentTransaction) (uint, error) {
	return m.insertFn(ctx, tx)
}

func (m *mockTransactionRepo) SetExternalReference(ctx context.Context, id uint, reference string) (bool, error) {
	if m.setReferenceFn != nil {
		return m.setReferenceFn(ctx, id, reference)
	}
	return true, nil
}

func (m *mockTransactionRepo) FindByID(ctx context.Context, id uint) (*domain.PaymentTransaction, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockTransactionRepo) ListByTenant(ctx context.Context, tenantID int, limit int) ([]*domain.PaymentTransaction, error) {
	return m.listFn(ctx, tenantID, limit)
}

type mockOrderReader struct {
	findByIDFn func(ctx context.Context, id uint) (*domain.Order, error)
}

func (m *mockOrderReader) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.findByIDFn(ctx, id)
}

type mockConfigReader struct {
	findFn func(ctx context.Context, tenantID int) (*domain.TenantPaymentConfig, error)
}

func (m *mockConfigReader) FindByTenantID(ctx context.Context, tenantID int) (*domain.TenantPaymentConfig, error) {
	return m.findFn(ctx, tenantID)
}

type mockReconciler struct {
	applyFn func(ctx context.Context, result *dto.PaymentResult) (*domain.PaymentTransaction, error)
	applied []*dto.PaymentResult
}

func (m *mockReconciler) Apply(ctx context.Context, result *dto.PaymentResult) (*domain.PaymentTransaction, error) {
	m.applied = append(m.applied, result)
	if m.applyFn != nil {
		return m.applyFn(ctx, result)
	}
	return &domain.PaymentTransaction{ID: 11, OrderID: result.OrderID, Status: domain.TransactionStatusCompleted}, nil
}

type mockAdapter struct {
	name          string
	initiateFn    func(ctx context.Context, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*provider.InitiationResult, error)
	checkStatusFn func(ctx context.Context, cfg *domain.TenantPaymentConfig, reference string) (*dto.PaymentResult, error)
	initiateCalls int
}

func (m *mockAdapter) Name() string {
	return m.name
}

func (m *mockAdapter) Initiate(ctx context.Context, cfg *domain.TenantPaymentConfig, tx *domain.PaymentTransaction, order *domain.Order) (*provider.InitiationResult, error) {
	m.initiateCalls++
	return m.initiateFn(ctx, cfg, tx, order)
}

func (m *mockAdapter) ParseCallback(payload []byte) (*dto.PaymentResult, error) {
	return nil, nil
}

func (m *mockAdapter) CheckStatus(ctx context.Context, cfg *domain.TenantPaymentConfig, reference string) (*dto.PaymentResult, error) {
	return m.checkStatusFn(ctx, cfg, reference)
}
