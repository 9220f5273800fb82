package tenant

import (
	"database/sql"

	"comanda/internal/tenant/controller"
	"comanda/internal/tenant/repository"
	"comanda/internal/tenant/usecase"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.ConfigController {
	repo := repository.NewMySQLConfigRepository(db)
	uc := usecase.NewConfigUseCase(repo, logger)
	return controller.NewConfigController(uc, logger)
}
