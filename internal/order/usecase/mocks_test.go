package usecase

import (
	"context"
	"database/sql"

	"comanda/internal/domain"
	"comanda/internal/notify"
)

type mockTxRunner struct {
	inTxFn func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func (m *mockTxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if m.inTxFn != nil {
		return m.inTxFn(ctx, fn)
	}
	return fn(nil)
}

type mockOrderRepo struct {
	findByIDFn         func(ctx context.Context, id uint) (*domain.Order, error)
	insertFn           func(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error)
	insertItemFn       func(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
	updateStatusFn     func(ctx context.Context, id uint, from, to string) (bool, error)
	insertAdjustmentFn func(ctx context.Context, tx *sql.Tx, adj domain.OrderAdjustment) (uint, error)
	updateChargesFn    func(ctx context.Context, tx *sql.Tx, id uint, serviceCharge, discount, total float64) error
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockOrderRepo) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error) {
	return m.insertFn(ctx, tx, order)
}

func (m *mockOrderRepo) InsertItem(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
	return m.insertItemFn(ctx, tx, item)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	return m.updateStatusFn(ctx, id, from, to)
}

func (m *mockOrderRepo) InsertAdjustment(ctx context.Context, tx *sql.Tx, adj domain.OrderAdjustment) (uint, error) {
	return m.insertAdjustmentFn(ctx, tx, adj)
}

func (m *mockOrderRepo) UpdateCharges(ctx context.Context, tx *sql.Tx, id uint, serviceCharge, discount, total float64) error {
	return m.updateChargesFn(ctx, tx, id, serviceCharge, discount, total)
}

type mockTableRepo struct {
	findByIDFn       func(ctx context.Context, id uint) (*domain.Table, error)
	updateStatusTxFn func(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error
}

func (m *mockTableRepo) FindByID(ctx context.Context, id uint) (*domain.Table, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockTableRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
	return m.updateStatusTxFn(ctx, tx, id, status, currentOrderID)
}

type mockPrinter struct {
	printFn func(ctx context.Context, order *domain.Order) error
	printed chan *domain.Order
}

func newMockPrinter() *mockPrinter {
	return &mockPrinter{printed: make(chan *domain.Order, 1)}
}

func (m *mockPrinter) PrintTicket(ctx context.Context, order *domain.Order) error {
	if m.printed != nil {
		m.printed <- order
	}
	if m.printFn != nil {
		return m.printFn(ctx, order)
	}
	return nil
}

type mockBus struct {
	events []notify.Event
}

func (m *mockBus) Publish(ev notify.Event) {
	m.events = append(m.events, ev)
}
