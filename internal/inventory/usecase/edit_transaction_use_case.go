package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"packhouse/internal/audit"
	apperrors "packhouse/internal/errors"
	"packhouse/internal/identity"

	"go.uber.org/zap"
)

// EditTransactionUseCase corrects a past ledger entry with the compensating
// pattern: reverse the original batch effects, re-apply at the corrected
// quantity, resynchronize, and rewrite the entry with an appended audit
// note. The whole sequence is one atomic unit; if the corrected quantity
// cannot be covered by live stock the reversal is rolled back too.
type EditTransactionUseCase struct {
	db        TransactionManager
	txns      TransactionStore
	consumer  Consumer
	syncer    Synchronizer
	auditor   audit.Sink
	resolver  identity.Resolver
	logger    *zap.Logger
	txTimeout time.Duration
	now       func() time.Time
}

func NewEditTransactionUseCase(
	db TransactionManager,
	txns TransactionStore,
	consumer Consumer,
	syncer Synchronizer,
	auditor audit.Sink,
	resolver identity.Resolver,
	logger *zap.Logger,
	txTimeout time.Duration,
) *EditTransactionUseCase {
	return &EditTransactionUseCase{
		db:        db,
		txns:      txns,
		consumer:  consumer,
		syncer:    syncer,
		auditor:   auditor,
		resolver:  resolver,
		logger:    logger,
		txTimeout: txTimeout,
		now:       time.Now,
	}
}

type EditTransactionInput struct {
	TransactionID int64
	// NewQuantity is the corrected absolute quantity; the sign of the
	// original entry is preserved.
	NewQuantity int
	Notes       string
	EditReason  string
	EditedBy    *int
}

func (uc *EditTransactionUseCase) EditTransaction(ctx context.Context, in EditTransactionInput) error {
	if in.NewQuantity < 0 {
		return apperrors.NewValidationError("newQuantity must be non-negative", apperrors.ValidationDetail{
			Field:   "newQuantity",
			Message: "newQuantity is an absolute quantity and must be zero or positive",
		})
	}
	if in.EditReason == "" {
		return apperrors.NewValidationError("editReason is required", apperrors.ValidationDetail{
			Field:   "editReason",
			Message: "an edit reason must be provided",
		})
	}

	// Optimistic allow-list check before opening the transaction.
	existing, err := uc.txns.FindByID(ctx, in.TransactionID)
	if err != nil {
		return err
	}
	if !existing.Editable() {
		return apperrors.NewNotEditableError(fmt.Sprintf("transaction %d cannot be edited", in.TransactionID))
	}

	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	txn, err := uc.txns.FindByIDForUpdate(txCtx, tx, in.TransactionID)
	if err != nil {
		return err
	}
	if !txn.Editable() {
		return apperrors.NewNotEditableError(fmt.Sprintf("transaction %d cannot be edited", in.TransactionID))
	}

	if err := uc.consumer.Restore(txCtx, tx, txn.ID); err != nil {
		return err
	}

	signedQuantity := in.NewQuantity
	if txn.IsDeduction() {
		signedQuantity = -in.NewQuantity
		if in.NewQuantity > 0 {
			if _, err := uc.consumer.Consume(txCtx, tx, txn.ProductID, in.NewQuantity, txn.ID); err != nil {
				return err
			}
		}
	}

	newStock, err := uc.syncer.Sync(txCtx, tx, txn.ProductID)
	if err != nil {
		return err
	}

	actor := identity.Describe(ctx, uc.resolver, in.EditedBy)
	notes := txn.Notes
	if in.Notes != "" {
		notes = appendNote(notes, in.Notes)
	}
	notes = appendNote(notes, fmt.Sprintf("[edited %s by %s] quantity %d -> %d: %s",
		uc.now().UTC().Format(time.RFC3339), actor, txn.Quantity, signedQuantity, in.EditReason))

	if err := uc.txns.UpdateForEdit(txCtx, tx, txn.ID, signedQuantity, newStock-signedQuantity, newStock, notes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Int64("transactionId", txn.ID), zap.Error(err))
		return err
	}

	uc.logger.Info("transaction edited",
		zap.Int64("transactionId", txn.ID),
		zap.Int("oldQuantity", txn.Quantity),
		zap.Int("newQuantity", signedQuantity),
		zap.Int("newStock", newStock),
	)

	uc.auditor.Record(ctx, audit.Event{
		Actor:    actor,
		Action:   "transaction.edit",
		Entity:   "transaction",
		EntityID: strconv.FormatInt(txn.ID, 10),
		Before:   txn.Quantity,
		After:    signedQuantity,
	})

	return nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
