package payment

import (
	"database/sql"

	"comanda/internal/config"
	"comanda/internal/infrastructure/metrics"
	"comanda/internal/infrastructure/mysql"
	"comanda/internal/notify"
	orderrepo "comanda/internal/order/repository"
	"comanda/internal/payment/controller"
	"comanda/internal/payment/provider"
	paymentrepo "comanda/internal/payment/repository"
	"comanda/internal/payment/service"
	"comanda/internal/payment/usecase"
	tenantrepo "comanda/internal/tenant/repository"

	"go.uber.org/zap"
)

// Module bundles the payment entry points main wires into the router and the
// background runner.
type Module struct {
	Controller *controller.PaymentController
	Sweeper    *service.StaleSweeper
}

func NewModule(db *sql.DB, cfg *config.Config, bus *notify.Bus, paymentMetr *metrics.PaymentMetrics, logger *zap.Logger) *Module {
	runner := mysql.NewTxRunner(db)
	txRepo := paymentrepo.NewMySQLTransactionRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	configRepo := tenantrepo.NewMySQLConfigRepository(db)

	registry := provider.NewRegistry(
		provider.NewMpesaAdapter(cfg.Payment.GatewayTimeout, cfg.Payment.CallbackBaseURL),
		provider.NewCardAdapter(cfg.Payment.GatewayTimeout, cfg.Payment.CallbackBaseURL),
		provider.NewCashAdapter(),
	)

	reconciler := service.NewReconciliationService(runner, txRepo, orderRepo, bus, paymentMetr, logger)
	sweeper := service.NewStaleSweeper(txRepo, cfg.Payment.StaleAfter, cfg.Payment.SweepInterval, logger)

	initiateUC := usecase.NewInitiatePaymentUseCase(
		registry,
		txRepo,
		orderRepo,
		configRepo,
		reconciler,
		paymentMetr,
		logger,
		cfg.Payment.MaxRetryAttempts,
	)
	statusUC := usecase.NewPaymentStatusUseCase(
		registry,
		txRepo,
		configRepo,
		reconciler,
		logger,
		cfg.Payment.StatusPollAfter,
	)

	return &Module{
		Controller: controller.NewPaymentController(initiateUC, statusUC, registry, reconciler, logger),
		Sweeper:    sweeper,
	}
}
