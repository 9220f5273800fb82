package repository

import (
	"context"
	"database/sql"
	"fmt"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	query := `
		SELECT id, tenantId, orderNumber, orderType, status, tableId,
		       subtotal, tax, serviceCharge, discount, total,
		       paymentStatus, paymentMethod, paidAt, createdAt, updatedAt
		FROM Orders
		WHERE id = ?
	`

	var (
		order         domain.Order
		tableID       sql.NullInt64
		paymentMethod sql.NullString
		paidAt        sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.TenantID, &order.OrderNumber, &order.OrderType, &order.Status,
		&tableID, &order.Subtotal, &order.Tax, &order.ServiceCharge, &order.Discount,
		&order.Total, &order.PaymentStatus, &paymentMethod, &paidAt,
		&order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	if tableID.Valid {
		v := uint(tableID.Int64)
		order.TableID = &v
	}
	if paymentMethod.Valid {
		order.PaymentMethod = &paymentMethod.String
	}
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *MySQLOrderRepository) findItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	query := `
		SELECT id, orderId, menuItemId, name, quantity, price
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error) {
	query := `
		INSERT INTO Orders (tenantId, orderNumber, orderType, status, tableId,
		                    subtotal, tax, serviceCharge, discount, total, paymentStatus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var tableID any
	if order.TableID != nil {
		tableID = *order.TableID
	}

	result, err := tx.ExecContext(ctx, query,
		order.TenantID, order.OrderNumber, order.OrderType, order.Status, tableID,
		order.Subtotal, order.Tax, order.ServiceCharge, order.Discount, order.Total,
		order.PaymentStatus,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting order insert id: %w", err)
	}

	return uint(id), nil
}

func (r *MySQLOrderRepository) InsertItem(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error) {
	query := `
		INSERT INTO OrderItems (orderId, menuItemId, name, quantity, price)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query, item.OrderID, item.MenuItemID, item.Name, item.Quantity, item.Price)
	if err != nil {
		return 0, fmt.Errorf("inserting order item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting order item insert id: %w", err)
	}

	return uint(id), nil
}

// UpdateStatus is a compare-and-set on the current status. Returns false when
// the order was no longer in the expected status.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// MarkPaid writes the paid projection. The payment status guard keeps a
// duplicate reconciliation from stamping paidAt twice.
func (r *MySQLOrderRepository) MarkPaid(ctx context.Context, tx *sql.Tx, id uint, method string) (bool, error) {
	query := `
		UPDATE Orders
		SET paymentStatus = ?, paymentMethod = ?, paidAt = NOW()
		WHERE id = ? AND paymentStatus <> ?
	`

	result, err := tx.ExecContext(ctx, query, domain.PaymentStatusPaid, method, id, domain.PaymentStatusPaid)
	if err != nil {
		return false, fmt.Errorf("marking order paid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ActiveOrderNumbersByTable locks and returns the numbers of orders that
// still block the table's release.
func (r *MySQLOrderRepository) ActiveOrderNumbersByTable(ctx context.Context, tx *sql.Tx, tableID uint) ([]string, error) {
	query := `
		SELECT orderNumber
		FROM Orders
		WHERE tableId = ? AND status NOT IN (?, ?)
		FOR UPDATE
	`

	rows, err := tx.QueryContext(ctx, query, tableID, domain.OrderStatusCompleted, domain.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("querying active orders for table: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("scanning order number: %w", err)
		}
		numbers = append(numbers, number)
	}

	return numbers, rows.Err()
}

func (r *MySQLOrderRepository) InsertAdjustment(ctx context.Context, tx *sql.Tx, adj domain.OrderAdjustment) (uint, error) {
	query := `
		INSERT INTO OrderAdjustments (orderId, field, oldValue, newValue, reason, appliedBy)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query, adj.OrderID, adj.Field, adj.OldValue, adj.NewValue, adj.Reason, adj.AppliedBy)
	if err != nil {
		return 0, fmt.Errorf("inserting order adjustment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting adjustment insert id: %w", err)
	}

	return uint(id), nil
}

func (r *MySQLOrderRepository) UpdateCharges(ctx context.Context, tx *sql.Tx, id uint, serviceCharge, discount, total float64) error {
	query := `UPDATE Orders SET serviceCharge = ?, discount = ?, total = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, serviceCharge, discount, total, id)
	if err != nil {
		return fmt.Errorf("updating order charges: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}
