package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Contribution TransactionType = "contribution"
	Expense      TransactionType = "expense"
)

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
)

const (
	Monthly RepetitionType = "monthly"
	Yearly  RepetitionType = "yearly"
	Weekly  RepetitionType = "weekly"
	Daily   RepetitionType = "daily"
)

type (
	TransactionType string
	ProjectStatus   string
	RepetitionType  string

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry: money put into the shared
	// pool (contribution) or spent from it (expense). Contributions
	// carry no project or category reference.
	Transaction struct {
		ID           string
		Type         TransactionType
		Amount       Money
		ProjectID    string
		CategoryID   string
		CategoryName string
		UserID       string
		RegisteredBy string
		Description  string
		Notes        string
		Quantity     *float64
		UnitPrice    *Money
		Date         time.Time
		CreatedAt    time.Time
	}

	// User is one of the household members.
	User struct {
		ID        string
		Name      string
		Email     string
		CreatedAt time.Time
	}

	// Project groups expenses toward a shared goal. A zero budget
	// means no declared limit.
	Project struct {
		ID          string
		Name        string
		Description string
		Budget      Money
		Status      ProjectStatus
		CreatedAt   time.Time
	}

	// Category tags expenses. Records with IsGroup set act as folders;
	// leaf categories reference them through ParentID. Grouping is one
	// level deep: groups never have a parent themselves.
	Category struct {
		ID       string
		Name     string
		Order    int
		IsGroup  bool
		ParentID string
	}

	// RecurringTransaction is a schedule that materializes as a normal
	// transaction whenever it becomes due.
	RecurringTransaction struct {
		ID          string
		Type        TransactionType
		Amount      Money
		ProjectID   string
		CategoryID  string
		UserID      string
		Description string
		Every       RepetitionType
		StartDate   time.Time
		EndDate     time.Time
		LastRun     time.Time
		Active      bool
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyUser          = errors.New("empty user reference")
	ErrContributionScoped = errors.New("contribution cannot reference a project or category")
	ErrAmountMismatch     = errors.New("amount does not match quantity times unit price")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Contribution || t == Expense
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectPaused, ProjectCompleted:
		return true
	}
	return false
}

// Validate enforces the producer-side invariants on a transaction. The
// aggregation layer never re-validates; it assumes inputs already passed
// through here (or through the external store's own validation).
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if t.Type == Contribution && (t.ProjectID != "" || t.CategoryID != "") {
		return ErrContributionScoped
	}
	if t.Quantity != nil && t.UnitPrice != nil {
		want := int64(math.Round(*t.Quantity * float64(t.UnitPrice.Cents)))
		diff := t.Amount.Cents - want
		if diff < -1 || diff > 1 {
			return ErrAmountMismatch
		}
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.StartDate.IsZero() {
		return errors.New("invalid start date")
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return errors.New("end date must not precede start date")
	}
	switch r.Every {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return errors.New("invalid repetition type")
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUser
	}
	return nil
}
