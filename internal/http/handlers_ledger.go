package http

import (
	"net/http"
	"time"

	"fondo/internal/ledger"
)

type moneyDTO struct {
	Cents     int64  `json:"cents"`
	Formatted string `json:"formatted"`
}

func money(m int64) moneyDTO {
	return moneyDTO{Cents: m, Formatted: formatEuros(m)}
}

type userStatsDTO struct {
	UserID           string   `json:"user_id"`
	UserName         string   `json:"user_name"`
	TotalContributed moneyDTO `json:"total_contributed"`
	TotalExpenses    moneyDTO `json:"total_expenses"`
	Share            moneyDTO `json:"share"`
	Balance          moneyDTO `json:"balance"`
}

type projectStatsDTO struct {
	ProjectID         string   `json:"project_id"`
	ProjectName       string   `json:"project_name"`
	TotalSpent        moneyDTO `json:"total_spent"`
	TransactionCount  int      `json:"transaction_count"`
	ContributionCount int      `json:"contribution_count"`
	ExpenseCount      int      `json:"expense_count"`
}

type summaryDTO struct {
	TotalContributed moneyDTO          `json:"total_contributed"`
	TotalExpenses    moneyDTO          `json:"total_expenses"`
	TotalInBox       moneyDTO          `json:"total_in_box"`
	Users            []userStatsDTO    `json:"users"`
	Projects         []projectStatsDTO `json:"projects"`
}

func toSummaryDTO(s ledger.Summary) summaryDTO {
	out := summaryDTO{
		TotalContributed: money(s.TotalContributed.Cents),
		TotalExpenses:    money(s.TotalExpenses.Cents),
		TotalInBox:       money(s.TotalInBox.Cents),
		Users:            make([]userStatsDTO, 0, len(s.Users)),
		Projects:         make([]projectStatsDTO, 0, len(s.Projects)),
	}
	for _, u := range s.Users {
		out.Users = append(out.Users, userStatsDTO{
			UserID:           u.UserID,
			UserName:         u.UserName,
			TotalContributed: money(u.TotalContributed.Cents),
			TotalExpenses:    money(u.TotalExpenses.Cents),
			Share:            money(u.Share.Cents),
			Balance:          money(u.Balance.Cents),
		})
	}
	for _, p := range s.Projects {
		out.Projects = append(out.Projects, projectStatsDTO{
			ProjectID:         p.ProjectID,
			ProjectName:       p.ProjectName,
			TotalSpent:        money(p.TotalSpent.Cents),
			TransactionCount:  p.TransactionCount,
			ContributionCount: p.ContributionCount,
			ExpenseCount:      p.ExpenseCount,
		})
	}
	return out
}

// handleSummary returns the pool totals with per-user and per-project
// rows for the transactions matching the query filter.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s.ledger.Summary(f)))
}

// handleBalances returns only the per-user standing rows.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s.ledger.Summary(f)).Users)
}

// handleProjectStats returns only the per-project spend rows.
func (s *Server) handleProjectStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s.ledger.Summary(f)).Projects)
}

type categoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type categoryGroupDTO struct {
	Group *categoryDTO  `json:"group"`
	Items []categoryDTO `json:"items"`
}

// handleCategories returns the category catalog resolved into ordered
// groups. Query: q narrows by name, include_empty keeps empty folders.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	opts := ledger.ResolveOptions{
		IncludeEmptyGroups: r.URL.Query().Get("include_empty") == "true",
		NameFilter:         sanitizeInput(r.URL.Query().Get("q")),
	}

	groups := s.ledger.Hierarchy(opts)
	out := make([]categoryGroupDTO, 0, len(groups))
	for _, g := range groups {
		dto := categoryGroupDTO{Items: make([]categoryDTO, 0, len(g.Items))}
		if g.Group != nil {
			dto.Group = &categoryDTO{ID: g.Group.ID, Name: g.Group.Name, Order: g.Group.Order}
		}
		for _, item := range g.Items {
			dto.Items = append(dto.Items, categoryDTO{ID: item.ID, Name: item.Name, Order: item.Order})
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryAggDTO struct {
	CategoryID string   `json:"category_id,omitempty"`
	Name       string   `json:"name"`
	Total      moneyDTO `json:"total"`
	Percentage float64  `json:"percentage"`
}

type groupAggDTO struct {
	GroupID    string   `json:"group_id,omitempty"`
	Name       string   `json:"name"`
	Total      moneyDTO `json:"total"`
	Percentage float64  `json:"percentage"`
}

type breakdownDTO struct {
	Total      moneyDTO         `json:"total"`
	Categories []categoryAggDTO `json:"categories"`
	Groups     []groupAggDTO    `json:"groups"`
}

// handleCategoryReport returns per-category and per-group spending for
// the transactions matching the query filter.
func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}

	b := s.ledger.Breakdown(f)
	out := breakdownDTO{
		Total:      money(b.Total.Cents),
		Categories: make([]categoryAggDTO, 0, len(b.Categories)),
		Groups:     make([]groupAggDTO, 0, len(b.Groups)),
	}
	for _, c := range b.Categories {
		out.Categories = append(out.Categories, categoryAggDTO{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Total:      money(c.Total.Cents),
			Percentage: c.Percentage,
		})
	}
	for _, g := range b.Groups {
		out.Groups = append(out.Groups, groupAggDTO{
			GroupID:    g.GroupID,
			Name:       g.Name,
			Total:      money(g.Total.Cents),
			Percentage: g.Percentage,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type bucketDTO struct {
	Label string   `json:"label"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Total moneyDTO `json:"total"`
}

// handleTrend returns bucketed spending over the trailing window.
// Query: granularity is weekly or monthly (default monthly), plus the
// usual filter parameters.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	g := ledger.Monthly
	switch r.URL.Query().Get("granularity") {
	case "", "monthly":
	case "weekly":
		g = ledger.Weekly
	default:
		apiError(w, http.StatusBadRequest, "granularity must be weekly or monthly")
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		apiError(w, http.StatusBadRequest, err.Error())
		return
	}

	buckets := s.ledger.Trend(g, f, time.Now())
	out := make([]bucketDTO, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketDTO{
			Label: b.Label,
			Start: b.Start.Format("2006-01-02"),
			End:   b.End.Format("2006-01-02"),
			Total: money(b.Total.Cents),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type progressDTO struct {
	UserID        string   `json:"user_id"`
	UserName      string   `json:"user_name"`
	Contributed   moneyDTO `json:"contributed"`
	Expected      moneyDTO `json:"expected"`
	Remaining     moneyDTO `json:"remaining"`
	Percentage    float64  `json:"percentage"`
	IsCurrentUser bool     `json:"is_current_user"`
}

// handleBudgetProgress returns each member's standing against the
// combined project budgets. Query: user marks the caller's own row.
func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	rows := s.ledger.BudgetProgress(sanitizeInput(r.URL.Query().Get("user")))
	out := make([]progressDTO, 0, len(rows))
	for _, p := range rows {
		out = append(out, progressDTO{
			UserID:        p.UserID,
			UserName:      p.UserName,
			Contributed:   money(p.Contributed.Cents),
			Expected:      money(p.Expected.Cents),
			Remaining:     money(p.Remaining.Cents),
			Percentage:    p.Percentage,
			IsCurrentUser: p.IsCurrentUser,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
