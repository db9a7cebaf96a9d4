package services

import (
	"context"
	"fmt"
	"log/slog"

	"fondo/internal/amqp"
	"fondo/internal/core"
	"fondo/internal/metrics"
	"fondo/internal/snapshot"
	"fondo/internal/storage"
)

// TransactionService orchestrates record writes across SQLite, the
// record-change stream and the in-memory snapshot. The broker is
// optional: without it the local mirror still works, only downstream
// consumers go stale.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	store      *snapshot.Store
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, store *snapshot.Store) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		store:      store,
	}
}

// Create validates and saves a transaction, announces the change and
// refreshes the served snapshot. Returns the assigned ID.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	id, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.publishChange(ctx, amqp.CollectionTransactions, id, amqp.OpUpsert, 1)
	s.refreshSnapshot(ctx)

	slog.InfoContext(ctx, "Transaction recorded",
		"id", id,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"project_id", tx.ProjectID)

	return id, nil
}

// Update applies a field patch to a transaction, announces the change
// and refreshes the snapshot.
func (s *TransactionService) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	updated, err := s.storage.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publishChange(ctx, amqp.CollectionTransactions, id, amqp.OpUpsert, 0)
	s.refreshSnapshot(ctx)
	return updated, nil
}

// Delete soft-deletes a transaction, announces the change and refreshes
// the snapshot.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishChange(ctx, amqp.CollectionTransactions, id, amqp.OpDelete, 0)
	s.refreshSnapshot(ctx)
	return nil
}

// Get returns one live transaction.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *TransactionService) publishChange(ctx context.Context, collection, id, op string, version int64) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message")
		return
	}
	msg := amqp.NewRecordChangeMessage(collection, id, op, version)
	if err := s.amqpClient.PublishRecordChange(ctx, msg); err != nil {
		// Don't fail the request; the record is saved locally.
		slog.ErrorContext(ctx, "Failed to publish change message",
			"collection", collection, "id", id, "error", err)
	}
}

func (s *TransactionService) refreshSnapshot(ctx context.Context) {
	if s.store == nil {
		return
	}
	snap, err := s.storage.LoadSnapshot(ctx)
	if err != nil {
		metrics.SnapshotRefreshes.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "Failed to reload snapshot after write", "error", err)
		return
	}
	version := s.store.Replace(snap)
	metrics.SnapshotRefreshes.WithLabelValues("ok").Inc()
	metrics.SnapshotVersion.Set(float64(version))
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
