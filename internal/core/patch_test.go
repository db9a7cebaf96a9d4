package core

import (
	"testing"
	"time"
)

func TestPatchValue(t *testing.T) {
	if _, ok := Keep[string]().Value(); ok {
		t.Error("keep should carry no value")
	}
	if _, ok := Clear[string]().Value(); ok {
		t.Error("clear should carry no value")
	}
	if v, ok := Set("x").Value(); !ok || v != "x" {
		t.Errorf("set value = %q, %v", v, ok)
	}
	if !Keep[int]().IsKeep() || Keep[int]().IsClear() {
		t.Error("keep predicates wrong")
	}
	if !Clear[int]().IsClear() || Clear[int]().IsKeep() {
		t.Error("clear predicates wrong")
	}
}

func TestPatchResolve(t *testing.T) {
	current := 7.5
	if got := Keep[float64]().Resolve(&current); got != &current {
		t.Error("keep should return the current pointer")
	}
	if got := Clear[float64]().Resolve(&current); got != nil {
		t.Error("clear should return nil")
	}
	if got := Set(2.0).Resolve(&current); got == nil || *got != 2.0 {
		t.Errorf("set resolve = %v", got)
	}
	if got := Set(2.0).Resolve(nil); got == nil || *got != 2.0 {
		t.Error("set should populate a previously empty value")
	}
}

func TestTransactionPatchApplyTo(t *testing.T) {
	qty := 3.0
	base := Transaction{
		ID:          "t1",
		Type:        Expense,
		Amount:      Money{Cents: 3000},
		ProjectID:   "p1",
		CategoryID:  "c1",
		UserID:      "u1",
		Description: "cemento",
		Notes:       "three bags",
		Quantity:    &qty,
		UnitPrice:   &Money{Cents: 1000},
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	p := TransactionPatch{
		Description: Set("cemento gris"),
		Notes:       Clear[string](),
		Amount:      Set(Money{Cents: 4500}),
		Quantity:    Clear[float64](),
		UnitPrice:   Clear[Money](),
	}

	got := p.ApplyTo(base)

	if got.Description != "cemento gris" {
		t.Errorf("description = %q", got.Description)
	}
	if got.Notes != "" {
		t.Errorf("notes = %q, want cleared", got.Notes)
	}
	if got.Amount.Cents != 4500 {
		t.Errorf("amount = %d", got.Amount.Cents)
	}
	if got.Quantity != nil || got.UnitPrice != nil {
		t.Error("quantity and unit price should clear")
	}
	// Untouched fields pass through.
	if got.ProjectID != "p1" || got.CategoryID != "c1" || got.UserID != "u1" {
		t.Errorf("kept fields changed: %+v", got)
	}
	if !got.Date.Equal(base.Date) {
		t.Errorf("date = %v", got.Date)
	}
}

func TestTransactionPatchClearRequiredIsKeep(t *testing.T) {
	base := validExpense()

	p := TransactionPatch{
		Description: Clear[string](),
		Amount:      Clear[Money](),
		Date:        Clear[time.Time](),
	}
	got := p.ApplyTo(base)

	if got.Description != base.Description || got.Amount != base.Amount || !got.Date.Equal(base.Date) {
		t.Errorf("required fields must ignore clear: %+v", got)
	}
}

func TestTransactionPatchZeroValueChangesNothing(t *testing.T) {
	base := validExpense()
	got := TransactionPatch{}.ApplyTo(base)
	if got != base {
		t.Errorf("zero patch changed transaction: %+v", got)
	}
}
