package sheets

import (
	"context"

	"fondo/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter appends one transaction row to the export
	// target and returns an opaque row reference.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionDeleter removes the row previously written for the
	// given transaction ID.
	TransactionDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// TaxonomyReader lists the group and category names known to the
	// export target.
	TaxonomyReader interface {
		List(ctx context.Context) (groups []string, categories []string, err error)
	}
)
