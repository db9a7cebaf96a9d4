package google

import (
	"fmt"
	"testing"
	"time"

	"fondo/internal/core"
)

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Movimenti", 2025, "2025 Movimenti"},
		{"  Movimenti  ", 2025, "2025 Movimenti"},
		{"2024 Movimenti", 2025, "2024 Movimenti"}, // already prefixed
		{"", 2025, ""},
		{"1899 Old", 2025, "2025 1899 Old"}, // implausible year is not a prefix
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestRowValues(t *testing.T) {
	tx := core.Transaction{
		ID:           "t1",
		Type:         core.Expense,
		Amount:       core.Money{Cents: 1250},
		ProjectID:    "p1",
		CategoryName: "Cemento",
		UserID:       "u1",
		Description:  "Bolsa de cemento",
		Date:         time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	row := rowValues(tx)
	if len(row) != 8 {
		t.Fatalf("expected 8 columns, got %d", len(row))
	}
	if row[0] != "2025-06-15" {
		t.Errorf("date column = %v", row[0])
	}
	if row[1] != "expense" {
		t.Errorf("type column = %v", row[1])
	}
	if fmt.Sprint(row[3]) != "12.5" {
		t.Errorf("amount column = %v, want 12.5", row[3])
	}
	if row[7] != "t1" {
		t.Errorf("id column = %v, want t1", row[7])
	}
}
