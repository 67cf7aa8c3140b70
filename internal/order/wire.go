package order

import (
	"database/sql"
	"time"

	"packhouse/internal/audit"
	"packhouse/internal/config"
	"packhouse/internal/identity"
	invrepo "packhouse/internal/inventory/repository"
	invservice "packhouse/internal/inventory/service"
	"packhouse/internal/notify"
	"packhouse/internal/order/controller"
	orderrepo "packhouse/internal/order/repository"
	"packhouse/internal/order/service"
	"packhouse/internal/order/usecase"

	"go.uber.org/zap"
)

// Module bundles the order HTTP controllers for route registration.
type Module struct {
	Fulfillment *controller.FulfillmentController
	Packing     *controller.PackingController
}

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	notifier notify.Notifier,
	auditor audit.Sink,
	resolver identity.Resolver,
) *Module {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	productRepo := invrepo.NewMySQLProductRepository(db)
	batchRepo := invrepo.NewMySQLBatchRepository(db)
	consumptionRepo := invrepo.NewMySQLConsumptionRepository(db)
	transactionRepo := invrepo.NewMySQLTransactionRepository(db)

	expiryHorizon := time.Duration(cfg.Inventory.ExpiryWarningDays) * 24 * time.Hour
	consumer := invservice.NewBatchConsumer(batchRepo, consumptionRepo, logger, expiryHorizon)
	syncer := invservice.NewStockSynchronizer(productRepo, batchRepo, logger)
	ledger := invservice.NewLedger(transactionRepo, logger)

	fulfillmentSvc := service.NewFulfillmentService(
		db,
		orderRepo,
		productRepo,
		batchRepo,
		consumer,
		syncer,
		ledger,
		logger,
		cfg.Order.TxTimeout,
	)

	markReadyUC := usecase.NewMarkReadyUseCase(orderRepo, fulfillmentSvc, notifier, auditor, resolver, logger)
	updateQuantityUC := usecase.NewUpdateQuantityUseCase(orderRepo, fulfillmentSvc, auditor, resolver, logger)
	packingUC := usecase.NewPackingUseCase(orderRepo, orderRepo, auditor, resolver, logger)

	return &Module{
		Fulfillment: controller.NewFulfillmentController(markReadyUC, updateQuantityUC, logger),
		Packing:     controller.NewPackingController(packingUC, logger),
	}
}
