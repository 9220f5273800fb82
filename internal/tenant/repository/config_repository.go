package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

// MySQLConfigRepository stores one payment configuration row per tenant. The
// provider blocks are JSON columns so adding a provider field never needs a
// migration.
type MySQLConfigRepository struct {
	db *sql.DB
}

func NewMySQLConfigRepository(db *sql.DB) *MySQLConfigRepository {
	return &MySQLConfigRepository{db: db}
}

func (r *MySQLConfigRepository) FindByTenantID(ctx context.Context, tenantID int) (*domain.TenantPaymentConfig, error) {
	query := `
		SELECT tenantId, defaultCurrency, cashEnabled, mobileMoney, card, createdAt, updatedAt
		FROM TenantPaymentConfig
		WHERE tenantId = ?
	`

	var (
		cfg             domain.TenantPaymentConfig
		mobileMoneyJSON []byte
		cardJSON        []byte
	)
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&cfg.TenantID, &cfg.DefaultCurrency, &cfg.CashEnabled,
		&mobileMoneyJSON, &cardJSON, &cfg.CreatedAt, &cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("payment configuration for tenant %d not found", tenantID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying tenant payment config: %w", err)
	}

	if err := json.Unmarshal(mobileMoneyJSON, &cfg.MobileMoney); err != nil {
		return nil, fmt.Errorf("decoding mobile money config: %w", err)
	}
	if err := json.Unmarshal(cardJSON, &cfg.Card); err != nil {
		return nil, fmt.Errorf("decoding card config: %w", err)
	}

	return &cfg, nil
}

func (r *MySQLConfigRepository) Upsert(ctx context.Context, cfg *domain.TenantPaymentConfig) error {
	mobileMoneyJSON, err := json.Marshal(cfg.MobileMoney)
	if err != nil {
		return fmt.Errorf("encoding mobile money config: %w", err)
	}
	cardJSON, err := json.Marshal(cfg.Card)
	if err != nil {
		return fmt.Errorf("encoding card config: %w", err)
	}

	query := `
		INSERT INTO TenantPaymentConfig (tenantId, defaultCurrency, cashEnabled, mobileMoney, card)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			defaultCurrency = VALUES(defaultCurrency),
			cashEnabled = VALUES(cashEnabled),
			mobileMoney = VALUES(mobileMoney),
			card = VALUES(card)
	`

	_, err = r.db.ExecContext(ctx, query,
		cfg.TenantID, cfg.DefaultCurrency, cfg.CashEnabled, mobileMoneyJSON, cardJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting tenant payment config: %w", err)
	}

	return nil
}

func (r *MySQLConfigRepository) ListAll(ctx context.Context) ([]*domain.TenantPaymentConfig, error) {
	query := `
		SELECT tenantId, defaultCurrency, cashEnabled, mobileMoney, card, createdAt, updatedAt
		FROM TenantPaymentConfig
		ORDER BY tenantId
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tenant payment configs: %w", err)
	}
	defer rows.Close()

	var configs []*domain.TenantPaymentConfig
	for rows.Next() {
		var (
			cfg             domain.TenantPaymentConfig
			mobileMoneyJSON []byte
			cardJSON        []byte
		)
		if err := rows.Scan(
			&cfg.TenantID, &cfg.DefaultCurrency, &cfg.CashEnabled,
			&mobileMoneyJSON, &cardJSON, &cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning tenant payment config: %w", err)
		}
		if err := json.Unmarshal(mobileMoneyJSON, &cfg.MobileMoney); err != nil {
			return nil, fmt.Errorf("decoding mobile money config: %w", err)
		}
		if err := json.Unmarshal(cardJSON, &cfg.Card); err != nil {
			return nil, fmt.Errorf("decoding card config: %w", err)
		}
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}
