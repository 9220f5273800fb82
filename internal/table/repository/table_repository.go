package repository

import (
	"context"
	"database/sql"
	"fmt"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

type MySQLTableRepository struct {
	db *sql.DB
}

func NewMySQLTableRepository(db *sql.DB) *MySQLTableRepository {
	return &MySQLTableRepository{db: db}
}

func (r *MySQLTableRepository) FindByID(ctx context.Context, id uint) (*domain.Table, error) {
	query := `
		SELECT id, tenantId, tableNumber, capacity, status, currentOrderId, createdAt, updatedAt
		FROM Tables
		WHERE id = ?
	`

	var (
		table          domain.Table
		currentOrderID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&table.ID, &table.TenantID, &table.TableNumber, &table.Capacity,
		&table.Status, &currentOrderID, &table.CreatedAt, &table.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying table by id: %w", err)
	}

	if currentOrderID.Valid {
		v := uint(currentOrderID.Int64)
		table.CurrentOrderID = &v
	}

	return &table, nil
}

// UpdateStatusTx writes the table status inside the caller's transaction.
// Passing a nil currentOrderID clears the column.
func (r *MySQLTableRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint, status string, currentOrderID *uint) error {
	query := `UPDATE Tables SET status = ?, currentOrderId = ? WHERE id = ?`

	var orderID any
	if currentOrderID != nil {
		orderID = *currentOrderID
	}

	result, err := tx.ExecContext(ctx, query, status, orderID, id)
	if err != nil {
		return fmt.Errorf("updating table status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}

	return nil
}
