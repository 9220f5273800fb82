package usecase

import (
	"context"

	"comanda/internal/actor"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"

	"go.uber.org/zap"
)

type ConfigRepository interface {
	FindByTenantID(ctx context.Context, tenantID int) (*domain.TenantPaymentConfig, error)
	Upsert(ctx context.Context, cfg *domain.TenantPaymentConfig) error
	ListAll(ctx context.Context) ([]*domain.TenantPaymentConfig, error)
}

type ConfigUseCase struct {
	repo   ConfigRepository
	logger *zap.Logger
}

func NewConfigUseCase(repo ConfigRepository, logger *zap.Logger) *ConfigUseCase {
	return &ConfigUseCase{repo: repo, logger: logger}
}

// Get returns a tenant's payment configuration. Staff of the same tenant get
// the masked view; tenant admins and superadmins see the credentials.
func (uc *ConfigUseCase) Get(ctx context.Context, act actor.Actor, tenantID int) (*domain.TenantPaymentConfig, error) {
	if !act.Superadmin() && act.TenantID != tenantID {
		return nil, apperrors.NewForbiddenError("payment configuration belongs to another tenant")
	}

	cfg, err := uc.repo.FindByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if !act.CanReadSecrets(tenantID) {
		return cfg.Masked(), nil
	}
	return cfg, nil
}

func (uc *ConfigUseCase) Put(ctx context.Context, act actor.Actor, tenantID int, cfg *domain.TenantPaymentConfig) (*domain.TenantPaymentConfig, error) {
	if !act.CanManageTenant(tenantID) {
		return nil, apperrors.NewForbiddenError("not allowed to manage this tenant's payment configuration")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	cfg.TenantID = tenantID
	if err := uc.repo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	uc.logger.Info("tenant payment configuration updated",
		zap.Int("tenantId", tenantID),
		zap.String("defaultCurrency", cfg.DefaultCurrency),
		zap.Bool("mobileMoneyEnabled", cfg.MobileMoney.Enabled),
		zap.Bool("cardEnabled", cfg.Card.Enabled),
	)

	return cfg.Masked(), nil
}

// List is the superadmin aggregate view, always masked.
func (uc *ConfigUseCase) List(ctx context.Context, act actor.Actor) ([]*domain.TenantPaymentConfig, error) {
	if !act.Superadmin() {
		return nil, apperrors.NewForbiddenError("only superadmins may list all tenant configurations")
	}

	configs, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	masked := make([]*domain.TenantPaymentConfig, len(configs))
	for i, cfg := range configs {
		masked[i] = cfg.Masked()
	}
	return masked, nil
}

func validateConfig(cfg *domain.TenantPaymentConfig) error {
	var details []apperrors.ValidationDetail

	if !domain.IsSupportedCurrency(cfg.DefaultCurrency) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "defaultCurrency",
			Message: "defaultCurrency must be one of KES, UGX, TZS, RWF, BIF, CDF, SSP",
		})
	}

	if cfg.MobileMoney.Enabled {
		if !cfg.MobileMoney.Complete() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "mobileMoney",
				Message: "shortCode, consumerKey, consumerSecret and passkey are required when mobile money is enabled",
			})
		}
		switch cfg.MobileMoney.Environment {
		case domain.EnvironmentSandbox, domain.EnvironmentProduction:
		default:
			details = append(details, apperrors.ValidationDetail{
				Field:   "mobileMoney.environment",
				Message: "environment must be sandbox or production",
			})
		}
	}

	if cfg.Card.Enabled && !cfg.Card.Complete() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "card",
			Message: "publicKey and secretKey are required when card payments are enabled",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
