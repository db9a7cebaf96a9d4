package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fondo/internal/core"
	"fondo/internal/storage"
)

const maxBodyBytes = 64 << 10

type transactionDTO struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Amount       moneyDTO `json:"amount"`
	ProjectID    string   `json:"project_id,omitempty"`
	CategoryID   string   `json:"category_id,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	UserID       string   `json:"user_id"`
	RegisteredBy string   `json:"registered_by,omitempty"`
	Description  string   `json:"description"`
	Notes        string   `json:"notes,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	UnitPrice    *int64   `json:"unit_price_cents,omitempty"`
	Date         string   `json:"date"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Amount:       money(tx.Amount.Cents),
		ProjectID:    tx.ProjectID,
		CategoryID:   tx.CategoryID,
		CategoryName: tx.CategoryName,
		UserID:       tx.UserID,
		RegisteredBy: tx.RegisteredBy,
		Description:  tx.Description,
		Notes:        tx.Notes,
		Quantity:     tx.Quantity,
		Date:         tx.Date.Format("2006-01-02"),
	}
	if tx.UnitPrice != nil {
		cents := tx.UnitPrice.Cents
		dto.UnitPrice = &cents
	}
	return dto
}

type createTransactionRequest struct {
	Type           string   `json:"type"`
	AmountCents    int64    `json:"amount_cents"`
	ProjectID      string   `json:"project_id"`
	CategoryID     string   `json:"category_id"`
	CategoryName   string   `json:"category_name"`
	UserID         string   `json:"user_id"`
	RegisteredBy   string   `json:"registered_by"`
	Description    string   `json:"description"`
	Notes          string   `json:"notes"`
	Quantity       *float64 `json:"quantity"`
	UnitPriceCents *int64   `json:"unit_price_cents"`
	Date           string   `json:"date"`
}

// handleListTransactions returns the live entries from the snapshot,
// narrowed by the query filter.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs := f.Apply(s.ledger.Snapshot().Transactions)
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := core.Transaction{
		Type:         core.TransactionType(req.Type),
		Amount:       core.Money{Cents: req.AmountCents},
		ProjectID:    sanitizeInput(req.ProjectID),
		CategoryID:   sanitizeInput(req.CategoryID),
		CategoryName: sanitizeInput(req.CategoryName),
		UserID:       sanitizeInput(req.UserID),
		RegisteredBy: sanitizeInput(req.RegisteredBy),
		Description:  sanitizeInput(req.Description),
		Notes:        sanitizeInput(req.Notes),
		Quantity:     req.Quantity,
	}
	if req.UnitPriceCents != nil {
		tx.UnitPrice = &core.Money{Cents: *req.UnitPriceCents}
	}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			apiError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid date %q", req.Date))
			return
		}
		tx.Date = d
	} else {
		tx.Date = time.Now()
	}

	id, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		if isValidationError(err) {
			apiError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		apiError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	tx.ID = id
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apiError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load transaction", "id", id, "error", err)
		apiError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	patch, err := decodePatch(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.transactions.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			apiError(w, http.StatusNotFound, "transaction not found")
		case isValidationError(err):
			apiError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to update transaction", "id", id, "error", err)
			apiError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apiError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "id", id, "error", err)
		apiError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodePatch reads a partial-update body where each field is
// independently absent (keep), null (clear) or present (set). The
// three-way distinction is what makes "remove the note" and "leave the
// note alone" different requests.
func decodePatch(r *http.Request) (core.TransactionPatch, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return core.TransactionPatch{}, fmt.Errorf("read body: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return core.TransactionPatch{}, fmt.Errorf("invalid JSON body")
	}

	var p core.TransactionPatch

	if sp, err := stringPatch(fields, "description"); err != nil {
		return core.TransactionPatch{}, err
	} else {
		p.Description = sp
	}
	if sp, err := stringPatch(fields, "notes"); err != nil {
		return core.TransactionPatch{}, err
	} else {
		p.Notes = sp
	}
	if sp, err := stringPatch(fields, "project_id"); err != nil {
		return core.TransactionPatch{}, err
	} else {
		p.ProjectID = sp
	}
	if sp, err := stringPatch(fields, "category_id"); err != nil {
		return core.TransactionPatch{}, err
	} else {
		p.CategoryID = sp
	}
	if sp, err := stringPatch(fields, "category_name"); err != nil {
		return core.TransactionPatch{}, err
	} else {
		p.CategoryName = sp
	}

	if raw, ok := fields["amount_cents"]; ok && !isJSONNull(raw) {
		var cents int64
		if err := json.Unmarshal(raw, &cents); err != nil {
			return core.TransactionPatch{}, fmt.Errorf("invalid amount_cents")
		}
		p.Amount = core.Set(core.Money{Cents: cents})
	}

	if raw, ok := fields["date"]; ok && !isJSONNull(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return core.TransactionPatch{}, fmt.Errorf("invalid date")
		}
		d, err := parseDate(s)
		if err != nil {
			return core.TransactionPatch{}, fmt.Errorf("invalid date %q", s)
		}
		p.Date = core.Set(d)
	}

	if raw, ok := fields["quantity"]; ok {
		if isJSONNull(raw) {
			p.Quantity = core.Clear[float64]()
		} else {
			var q float64
			if err := json.Unmarshal(raw, &q); err != nil {
				return core.TransactionPatch{}, fmt.Errorf("invalid quantity")
			}
			p.Quantity = core.Set(q)
		}
	}

	if raw, ok := fields["unit_price_cents"]; ok {
		if isJSONNull(raw) {
			p.UnitPrice = core.Clear[core.Money]()
		} else {
			var cents int64
			if err := json.Unmarshal(raw, &cents); err != nil {
				return core.TransactionPatch{}, fmt.Errorf("invalid unit_price_cents")
			}
			p.UnitPrice = core.Set(core.Money{Cents: cents})
		}
	}

	return p, nil
}

func stringPatch(fields map[string]json.RawMessage, key string) (core.Patch[string], error) {
	raw, ok := fields[key]
	if !ok {
		return core.Keep[string](), nil
	}
	if isJSONNull(raw) {
		return core.Clear[string](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return core.Patch[string]{}, fmt.Errorf("invalid %s", key)
	}
	return core.Set(sanitizeInput(s)), nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// isValidationError distinguishes bad input from infrastructure
// failures so the handler can pick the right status code.
func isValidationError(err error) bool {
	for _, v := range []error{
		core.ErrInvalidAmount, core.ErrInvalidType, core.ErrInvalidDate,
		core.ErrEmptyDescription, core.ErrEmptyUser,
		core.ErrContributionScoped, core.ErrAmountMismatch,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
