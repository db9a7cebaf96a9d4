package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fondo/internal/metrics"
	"fondo/internal/sheets"
	"fondo/internal/storage"
)

// ExportWorker pushes locally recorded transactions to the spreadsheet
// export. Rows are picked up from the pending-sync queue in SQLite, so
// the worker recovers from downtime without losing writes: anything not
// yet exported is still flagged in the database.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.TransactionWriter
	deleter   sheets.TransactionDeleter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// Run polls the pending queue until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) error {
	// Catch up on anything missed while the worker was down.
	if err := w.StartupCheck(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export check failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Export batch failed", "error", err)
			}
		}
	}
}

// StartupCheck drains a larger batch than the regular cycle so a backlog
// accumulated during downtime clears quickly.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	synced, failed := w.processBatch(ctx, pending)

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

// ProcessPending exports one batch of not-yet-synced transactions.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))
	w.processBatch(ctx, pending)
	return nil
}

func (w *ExportWorker) processBatch(ctx context.Context, pending []storage.PendingSyncTransaction) (synced, failed int) {
	for _, row := range pending {
		var err error
		if row.Deleted {
			err = w.exportDelete(ctx, row.ID)
		} else {
			err = w.exportUpsert(ctx, row.ID)
		}
		if err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"id", row.ID, "deleted", row.Deleted, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed
}

// exportUpsert appends the transaction's row to the spreadsheet and
// marks it synced. A failed append flags the row so it is retried only
// after manual inspection instead of wedging the queue.
func (w *ExportWorker) exportUpsert(ctx context.Context, id string) error {
	tx, err := w.storage.GetTransaction(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		metrics.SheetsExports.WithLabelValues("error").Inc()
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to export: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		// The export worked; losing the mark only costs a re-append.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	metrics.SheetsExports.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "Exported transaction",
		"id", id,
		"row_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}

// exportDelete removes the transaction's exported row. A row the export
// never saw counts as success; tombstoning something absent is done.
func (w *ExportWorker) exportDelete(ctx context.Context, id string) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No deleter configured, leaving exported row in place", "id", id)
		if err := w.storage.MarkSynced(ctx, id); err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}
		return nil
	}

	if err := w.deleter.Delete(ctx, id); err != nil {
		metrics.SheetsExports.WithLabelValues("error").Inc()
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("delete exported row: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark tombstone as synced", "id", id, "error", err)
	}

	metrics.SheetsExports.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "Removed exported transaction row", "id", id)
	return nil
}
