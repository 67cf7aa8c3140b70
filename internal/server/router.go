package server

import (
	"net/http"
	"time"

	"packhouse/internal/inventory"
	"packhouse/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(orderModule *order.Module, inventoryModule *inventory.Module, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("failed to write health response", zap.Error(err))
		}
	})

	r.Route("/orders/{orderId}", func(r chi.Router) {
		r.Post("/ready", orderModule.Fulfillment.MarkReady)
		r.Patch("/items/{productId}", orderModule.Fulfillment.UpdateItemQuantity)

		r.Route("/packing", func(r chi.Router) {
			r.Post("/start", orderModule.Packing.Start)
			r.Post("/pause", orderModule.Packing.Pause)
			r.Post("/resume", orderModule.Packing.Resume)
			r.Post("/reset", orderModule.Packing.Reset)
		})
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/products/low-stock", inventoryModule.Stock.ListLowStock)
		r.Post("/products/{productId}/consume", inventoryModule.Stock.ConsumeStock)
		r.Post("/products/{productId}/sync", inventoryModule.Stock.SyncStock)
		r.Post("/products/{productId}/receive", inventoryModule.Stock.ReceiveStock)
		r.Post("/process", inventoryModule.Stock.ProcessStock)

		r.Post("/batches/{batchId}/write-off", inventoryModule.Batches.WriteOff)
		r.Patch("/batches/{batchId}/quantity", inventoryModule.Batches.UpdateQuantity)

		r.Patch("/transactions/{transactionId}", inventoryModule.Transactions.Edit)
	})

	return r
}
