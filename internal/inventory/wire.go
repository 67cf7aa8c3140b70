package inventory

import (
	"database/sql"
	"time"

	"packhouse/internal/audit"
	"packhouse/internal/config"
	"packhouse/internal/identity"
	"packhouse/internal/inventory/controller"
	"packhouse/internal/inventory/repository"
	"packhouse/internal/inventory/service"
	"packhouse/internal/inventory/usecase"

	"go.uber.org/zap"
)

// Module bundles the inventory HTTP controllers for route registration.
type Module struct {
	Stock        *controller.StockController
	Batches      *controller.BatchController
	Transactions *controller.TransactionController
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, auditor audit.Sink, resolver identity.Resolver) *Module {
	batchRepo := repository.NewMySQLBatchRepository(db)
	consumptionRepo := repository.NewMySQLConsumptionRepository(db)
	transactionRepo := repository.NewMySQLTransactionRepository(db)
	productRepo := repository.NewMySQLProductRepository(db)

	expiryHorizon := time.Duration(cfg.Inventory.ExpiryWarningDays) * 24 * time.Hour
	consumer := service.NewBatchConsumer(batchRepo, consumptionRepo, logger, expiryHorizon)
	syncer := service.NewStockSynchronizer(productRepo, batchRepo, logger)
	ledger := service.NewLedger(transactionRepo, logger)

	txTimeout := cfg.Order.TxTimeout

	consumeUC := usecase.NewConsumeStockUseCase(db, productRepo, transactionRepo, consumer, syncer, ledger, logger, txTimeout)
	syncUC := usecase.NewSyncStockUseCase(db, productRepo, syncer, logger, txTimeout)
	receiveUC := usecase.NewReceiveStockUseCase(db, productRepo, batchRepo, syncer, ledger, auditor, resolver, logger, txTimeout)
	adjustUC := usecase.NewAdjustBatchUseCase(db, productRepo, batchRepo, consumptionRepo, syncer, ledger, auditor, resolver, logger, txTimeout)
	editUC := usecase.NewEditTransactionUseCase(db, transactionRepo, consumer, syncer, auditor, resolver, logger, txTimeout)
	processUC := usecase.NewProcessStockUseCase(db, productRepo, batchRepo, consumer, syncer, ledger, auditor, resolver, logger, txTimeout)
	lowStockUC := usecase.NewLowStockUseCase(productRepo, logger)

	return &Module{
		Stock:        controller.NewStockController(consumeUC, syncUC, receiveUC, processUC, lowStockUC, logger),
		Batches:      controller.NewBatchController(adjustUC, logger),
		Transactions: controller.NewTransactionController(editUC, logger),
	}
}
