package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

type MySQLTransactionRepository struct {
	db *sql.DB
}

func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}

const transactionColumns = `
	id, tenantId, orderId, provider, externalReference, payerReference,
	amount, currency, status, resultCode, resultDescription,
	idempotencyKey, stale, createdAt, resolvedAt
`

func (r *MySQLTransactionRepository) Insert(ctx context.Context, tx *domain.PaymentTransaction) (uint, error) {
	query := `
		INSERT INTO PaymentTransactions (tenantId, orderId, provider, payerReference,
		                                 amount, currency, status, idempotencyKey)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.TenantID, tx.OrderID, tx.Provider, tx.PayerReference,
		tx.Amount, tx.Currency, tx.Status, tx.IdempotencyKey,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting payment transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting transaction insert id: %w", err)
	}

	return uint(id), nil
}

func (r *MySQLTransactionRepository) FindByID(ctx context.Context, id uint) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM PaymentTransactions WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id),
		fmt.Sprintf("payment transaction with id %d not found", id))
}

func (r *MySQLTransactionRepository) FindByExternalReference(ctx context.Context, reference string) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM PaymentTransactions WHERE externalReference = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, reference),
		fmt.Sprintf("payment transaction with reference %s not found", reference))
}

func (r *MySQLTransactionRepository) FindByOrderAndKey(ctx context.Context, orderID uint, idempotencyKey string) (*domain.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM PaymentTransactions WHERE orderId = ? AND idempotencyKey = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, orderID, idempotencyKey),
		fmt.Sprintf("payment transaction for order %d not found", orderID))
}

func (r *MySQLTransactionRepository) scanOne(row *sql.Row, notFoundMsg string) (*domain.PaymentTransaction, error) {
	var (
		tx                domain.PaymentTransaction
		externalReference sql.NullString
		resultCode        sql.NullString
		resultDescription sql.NullString
		resolvedAt        sql.NullTime
	)
	err := row.Scan(
		&tx.ID, &tx.TenantID, &tx.OrderID, &tx.Provider, &externalReference, &tx.PayerReference,
		&tx.Amount, &tx.Currency, &tx.Status, &resultCode, &resultDescription,
		&tx.IdempotencyKey, &tx.Stale, &tx.CreatedAt, &resolvedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning payment transaction: %w", err)
	}

	if externalReference.Valid {
		tx.ExternalReference = &externalReference.String
	}
	if resultCode.Valid {
		tx.ResultCode = &resultCode.String
	}
	if resultDescription.Valid {
		tx.ResultDescription = &resultDescription.String
	}
	if resolvedAt.Valid {
		tx.ResolvedAt = &resolvedAt.Time
	}

	return &tx, nil
}

// SetExternalReference attaches the gateway's reference once the initiation
// is accepted. Only a still-pending transaction may gain one.
func (r *MySQLTransactionRepository) SetExternalReference(ctx context.Context, id uint, reference string) (bool, error) {
	query := `
		UPDATE PaymentTransactions
		SET externalReference = ?, status = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query, reference, domain.TransactionStatusProcessing, id, domain.TransactionStatusPending)
	if err != nil {
		return false, fmt.Errorf("setting external reference: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ResolveTx moves a transaction to a terminal status inside the caller's
// transaction. The status guard makes a second resolution a no-op, which is
// how duplicate callbacks die.
func (r *MySQLTransactionRepository) ResolveTx(ctx context.Context, tx *sql.Tx, id uint, status, resultCode, resultDescription string) (bool, error) {
	query := `
		UPDATE PaymentTransactions
		SET status = ?, resultCode = ?, resultDescription = ?, resolvedAt = NOW()
		WHERE id = ? AND status IN (?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		status, resultCode, resultDescription, id,
		domain.TransactionStatusPending, domain.TransactionStatusProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("resolving payment transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// MarkStale flags unresolved transactions older than the cutoff so operators
// can chase them. It never fails them; the gateway may still answer.
func (r *MySQLTransactionRepository) MarkStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		UPDATE PaymentTransactions
		SET stale = 1
		WHERE stale = 0 AND status IN (?, ?) AND createdAt < ?
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.TransactionStatusPending, domain.TransactionStatusProcessing, olderThan)
	if err != nil {
		return 0, fmt.Errorf("marking stale transactions: %w", err)
	}

	return result.RowsAffected()
}

func (r *MySQLTransactionRepository) ListByTenant(ctx context.Context, tenantID int, limit int) ([]*domain.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM PaymentTransactions
		WHERE tenantId = ?
		ORDER BY createdAt DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing payment transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.PaymentTransaction
	for rows.Next() {
		var (
			tx                domain.PaymentTransaction
			externalReference sql.NullString
			resultCode        sql.NullString
			resultDescription sql.NullString
			resolvedAt        sql.NullTime
		)
		if err := rows.Scan(
			&tx.ID, &tx.TenantID, &tx.OrderID, &tx.Provider, &externalReference, &tx.PayerReference,
			&tx.Amount, &tx.Currency, &tx.Status, &resultCode, &resultDescription,
			&tx.IdempotencyKey, &tx.Stale, &tx.CreatedAt, &resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning payment transaction: %w", err)
		}
		if externalReference.Valid {
			tx.ExternalReference = &externalReference.String
		}
		if resultCode.Valid {
			tx.ResultCode = &resultCode.String
		}
		if resultDescription.Valid {
			tx.ResultDescription = &resultDescription.String
		}
		if resolvedAt.Valid {
			tx.ResolvedAt = &resolvedAt.Time
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}
