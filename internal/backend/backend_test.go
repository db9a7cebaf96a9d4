package backend

import (
	"context"
	"testing"
)

func TestCreateMemoryBackend(t *testing.T) {
	res, err := Create(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if res.Backend == nil {
		t.Fatal("Create() returned nil backend")
	}
}

func TestCreateInvalidType(t *testing.T) {
	if _, err := Create(context.Background(), Config{Type: "csv"}); err == nil {
		t.Error("Create() should reject unknown backend types")
	}
}

func TestCreateSheetsBackendRequiresSpreadsheet(t *testing.T) {
	if _, err := Create(context.Background(), Config{Type: SheetsBackend}); err == nil {
		t.Error("Create() should fail without a spreadsheet ID")
	}
}

func TestTypeIsValid(t *testing.T) {
	for _, tt := range []struct {
		typ  Type
		want bool
	}{
		{SheetsBackend, true},
		{MemoryBackend, true},
		{"", false},
		{"csv", false},
	} {
		if got := tt.typ.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
