// Package memory is an in-process stand-in for the spreadsheet export,
// used in tests and when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fondo/internal/core"
)

type Store struct {
	mu     sync.Mutex
	groups []string
	cats   []string
	items  map[string]core.Transaction
	order  []string
}

func New(groups, cats []string) *Store {
	return &Store{
		groups: dedupe(groups),
		cats:   dedupe(cats),
		items:  make(map[string]core.Transaction),
	}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[tx.ID]; !exists {
		s.order = append(s.order, tx.ID)
	}
	s.items[tx.ID] = tx
	return fmt.Sprintf("mem:%d", len(s.order)), nil
}

// Delete removes the row written for id. Unknown IDs are a no-op, which
// matches the remote target's tolerance for already-removed rows.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return nil
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns group and category names.
func (s *Store) List(_ context.Context) ([]string, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := append([]string(nil), s.groups...)
	cats := append([]string(nil), s.cats...)
	return groups, cats, nil
}

// Transactions returns the stored rows in append order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
