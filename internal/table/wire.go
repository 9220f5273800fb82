package table

import (
	"database/sql"

	"comanda/internal/infrastructure/mysql"
	orderrepo "comanda/internal/order/repository"
	"comanda/internal/table/controller"
	tablerepo "comanda/internal/table/repository"
	"comanda/internal/table/service"
	"comanda/internal/table/usecase"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.TableController {
	runner := mysql.NewTxRunner(db)
	tableRepo := tablerepo.NewMySQLTableRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)

	releaser := service.NewReleaseService(runner, orderRepo, tableRepo, logger)
	uc := usecase.NewUpdateTableStatusUseCase(tableRepo, releaser, logger)

	return controller.NewTableController(uc, logger)
}
