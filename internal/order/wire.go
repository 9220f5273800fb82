package order

import (
	"database/sql"

	"comanda/internal/config"
	"comanda/internal/infrastructure/mysql"
	"comanda/internal/notify"
	"comanda/internal/order/controller"
	orderrepo "comanda/internal/order/repository"
	"comanda/internal/order/service"
	"comanda/internal/order/usecase"
	tablerepo "comanda/internal/table/repository"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, cfg *config.Config, bus *notify.Bus, logger *zap.Logger) *controller.OrderController {
	runner := mysql.NewTxRunner(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	tableRepo := tablerepo.NewMySQLTableRepository(db)

	var printer service.KitchenPrinter = service.NopKitchenPrinter{}
	if cfg.Order.KitchenPrinterURL != "" {
		printer = service.NewHTTPKitchenPrinter(cfg.Order.KitchenPrinterURL)
	}

	createUC := usecase.NewCreateOrderUseCase(
		runner,
		orderRepo,
		tableRepo,
		logger,
		cfg.Order.TaxRate,
		cfg.Order.ServiceChargeRate,
	)
	statusUC := usecase.NewUpdateOrderStatusUseCase(orderRepo, printer, bus, logger)
	adjustUC := usecase.NewApplyAdjustmentUseCase(runner, orderRepo, logger)

	return controller.NewOrderController(createUC, statusUC, adjustUC, orderRepo, logger)
}
