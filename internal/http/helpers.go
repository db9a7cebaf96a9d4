package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fondo/internal/core"
	"fondo/internal/ledger"
)

// writeJSON serializes v to the response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// apiError writes a JSON error envelope.
func apiError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseFilter builds a transaction filter from query parameters: type
// and project may repeat, from/to are inclusive YYYY-MM-DD dates, q is
// a description search term.
func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	var f ledger.Filter

	for _, v := range q["type"] {
		t := core.TransactionType(strings.TrimSpace(v))
		if !t.Valid() {
			return ledger.Filter{}, fmt.Errorf("unknown transaction type %q", v)
		}
		f.Types = append(f.Types, t)
	}

	for _, v := range q["project"] {
		if v = strings.TrimSpace(v); v != "" {
			f.ProjectIDs = append(f.ProjectIDs, v)
		}
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("invalid from date %q", v)
		}
		f.From = t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return ledger.Filter{}, fmt.Errorf("invalid to date %q", v)
		}
		// Inclusive upper bound: cover the whole day.
		f.To = t.Add(24*time.Hour - time.Nanosecond)
	}

	f.Search = sanitizeInput(q.Get("q"))
	return f, nil
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// formatEuros formats cents as a Euro currency string (e.g., "€12,34").
func formatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	euros := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(euros, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-€" + s
	}
	return "€" + s
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}
