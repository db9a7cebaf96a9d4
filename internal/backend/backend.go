package backend

import (
	"context"
	"fmt"

	"fondo/internal/sheets"
	gsheet "fondo/internal/sheets/google"
	"fondo/internal/sheets/memory"
)

// ExportBackend is the target the export worker pushes rows to.
type ExportBackend interface {
	sheets.TransactionWriter
	sheets.TransactionDeleter
}

// Type selects the export backend implementation.
type Type string

const (
	// SheetsBackend exports to a Google spreadsheet.
	SheetsBackend Type = "sheets"
	// MemoryBackend keeps exported rows in process memory, for local
	// development and tests.
	MemoryBackend Type = "memory"
)

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	return t == SheetsBackend || t == MemoryBackend
}

// Config holds what the factory needs to build a backend.
type Config struct {
	Type Type

	// Google Sheets specific
	SpreadsheetID      string
	SheetBase          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

// Result contains the backend instance and an optional cleanup function.
type Result struct {
	Backend ExportBackend
	Cleanup func() error
}

// Create builds the export backend selected by cfg.Type.
func Create(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Type {
	case SheetsBackend:
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.SpreadsheetID,
			SheetBase:          cfg.SheetBase,
			ServiceAccountFile: cfg.ServiceAccountFile,
			ServiceAccountJSON: cfg.ServiceAccountJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("create sheets backend: %w", err)
		}
		return &Result{Backend: client}, nil

	case MemoryBackend:
		return &Result{Backend: memory.New(nil, nil)}, nil

	default:
		return nil, fmt.Errorf("invalid export backend type: %q", cfg.Type)
	}
}
