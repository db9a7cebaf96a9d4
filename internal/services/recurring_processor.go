package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fondo/internal/core"
	"fondo/internal/storage"
)

// RecurringProcessor materializes due recurring schedules into normal
// transactions.
type RecurringProcessor struct {
	storage   *storage.SQLiteRepository
	txService *TransactionService
}

// NewRecurringProcessor creates a new recurring transaction processor.
func NewRecurringProcessor(storage *storage.SQLiteRepository, txService *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{
		storage:   storage,
		txService: txService,
	}
}

// ProcessDue walks the active schedules and creates a transaction for
// each one that is due at now. Returns how many were created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.txService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	schedules, err := p.storage.ListDueRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active recurring schedules: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring schedules",
		"total_active", len(schedules),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, rec := range schedules {
		due, err := p.isDue(rec, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check if schedule is due",
				"id", rec.ID, "error", err)
			continue
		}
		if !due {
			continue
		}

		tx := core.Transaction{
			Type:        rec.Type,
			Amount:      rec.Amount,
			ProjectID:   rec.ProjectID,
			CategoryID:  rec.CategoryID,
			UserID:      rec.UserID,
			Description: rec.Description,
			Date:        now,
		}

		id, err := p.txService.Create(ctx, tx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from schedule",
				"recurring_id", rec.ID,
				"description", rec.Description,
				"error", err)
			continue
		}

		if err := p.storage.MarkRecurringRun(ctx, rec.ID, now); err != nil {
			// Continue anyway; the transaction was created.
			slog.ErrorContext(ctx, "Failed to update last run",
				"recurring_id", rec.ID, "error", err)
		}

		processed++
		slog.InfoContext(ctx, "Created transaction from recurring schedule",
			"recurring_id", rec.ID,
			"transaction_id", id,
			"amount_cents", rec.Amount.Cents,
			"frequency", rec.Every)
	}

	slog.InfoContext(ctx, "Recurring schedule processing complete",
		"processed", processed,
		"total_checked", len(schedules))

	return processed, nil
}

func (p *RecurringProcessor) isDue(rec core.RecurringTransaction, now time.Time) (bool, error) {
	if now.Before(rec.StartDate) {
		return false, nil
	}
	if !rec.EndDate.IsZero() && now.After(rec.EndDate) {
		return false, nil
	}

	checker, err := GetDuenessChecker(rec.Every)
	if err != nil {
		return false, err
	}
	return checker.IsDue(rec.LastRun, now, rec.StartDate), nil
}
