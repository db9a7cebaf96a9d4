package core

import "time"

// Patch describes what an update should do to one optional field: leave
// it alone, clear it, or set a new value. It replaces the undefined/null
// distinction the original data producers relied on.
type Patch[T any] struct {
	op  patchOp
	val T
}

type patchOp int

const (
	patchKeep patchOp = iota
	patchClear
	patchSet
)

// Keep returns a patch that leaves the field untouched.
func Keep[T any]() Patch[T] {
	return Patch[T]{op: patchKeep}
}

// Clear returns a patch that removes the field's value.
func Clear[T any]() Patch[T] {
	return Patch[T]{op: patchClear}
}

// Set returns a patch that assigns v to the field.
func Set[T any](v T) Patch[T] {
	return Patch[T]{op: patchSet, val: v}
}

func (p Patch[T]) IsKeep() bool  { return p.op == patchKeep }
func (p Patch[T]) IsClear() bool { return p.op == patchClear }

// Value returns the value to set and whether the patch carries one.
func (p Patch[T]) Value() (T, bool) {
	return p.val, p.op == patchSet
}

// Resolve applies the patch to the current optional value and returns
// the resulting optional value.
func (p Patch[T]) Resolve(current *T) *T {
	switch p.op {
	case patchClear:
		return nil
	case patchSet:
		v := p.val
		return &v
	default:
		return current
	}
}

// TransactionPatch collects per-field patches for a transaction update.
// Zero value means "change nothing". Date and Amount can only be set,
// never cleared; clearing them is treated as keep by the storage layer.
type TransactionPatch struct {
	Description  Patch[string]
	Notes        Patch[string]
	Amount       Patch[Money]
	Date         Patch[time.Time]
	ProjectID    Patch[string]
	CategoryID   Patch[string]
	CategoryName Patch[string]
	Quantity     Patch[float64]
	UnitPrice    Patch[Money]
}

// ApplyTo returns a copy of tx with the patch applied. Required fields
// (description, amount, date) ignore clear; optional ones clear to
// their empty value.
func (p TransactionPatch) ApplyTo(tx Transaction) Transaction {
	if v, ok := p.Description.Value(); ok {
		tx.Description = v
	}
	if v, ok := p.Amount.Value(); ok {
		tx.Amount = v
	}
	if v, ok := p.Date.Value(); ok {
		tx.Date = v
	}

	if v, ok := p.Notes.Value(); ok {
		tx.Notes = v
	} else if p.Notes.IsClear() {
		tx.Notes = ""
	}
	if v, ok := p.ProjectID.Value(); ok {
		tx.ProjectID = v
	} else if p.ProjectID.IsClear() {
		tx.ProjectID = ""
	}
	if v, ok := p.CategoryID.Value(); ok {
		tx.CategoryID = v
	} else if p.CategoryID.IsClear() {
		tx.CategoryID = ""
	}
	if v, ok := p.CategoryName.Value(); ok {
		tx.CategoryName = v
	} else if p.CategoryName.IsClear() {
		tx.CategoryName = ""
	}

	tx.Quantity = p.Quantity.Resolve(tx.Quantity)
	tx.UnitPrice = p.UnitPrice.Resolve(tx.UnitPrice)
	return tx
}
