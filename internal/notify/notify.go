package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Notifier informs a customer that their order is ready for delivery. It is
// called only after the fulfillment transaction has committed, best-effort:
// a delivery failure never rolls back fulfillment.
type Notifier interface {
	OrderReady(ctx context.Context, customerEmail, customerName, orderNumber string, deliveryDate *time.Time) error
}

// LogNotifier stands in for the external mail service.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrderReady(_ context.Context, customerEmail, customerName, orderNumber string, deliveryDate *time.Time) error {
	fields := []zap.Field{
		zap.String("customerEmail", customerEmail),
		zap.String("customerName", customerName),
		zap.String("orderNumber", orderNumber),
	}
	if deliveryDate != nil {
		fields = append(fields, zap.Time("deliveryDate", *deliveryDate))
	}
	n.logger.Info("order ready notification", fields...)
	return nil
}
