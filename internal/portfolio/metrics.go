package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Metrics are the derived financial indicators of one project. Ratios are
// nil when their denominator is zero.
type Metrics struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Budget        decimal.Decimal  `json:"budget"`
	Budgeted      decimal.Decimal  `json:"budgeted"`
	Realized      decimal.Decimal  `json:"realized"`
	Committed     decimal.Decimal  `json:"committed"`
	Deviation     *decimal.Decimal `json:"deviation_pct,omitempty"`
	ExecutionRate *decimal.Decimal `json:"execution_rate_pct,omitempty"`
	BU            *decimal.Decimal `json:"bu_pct,omitempty"`
	CPI           *decimal.Decimal `json:"cpi,omitempty"`
	SPI           *decimal.Decimal `json:"spi,omitempty"`
}

// Summary aggregates Metrics over the whole portfolio.
type Summary struct {
	Projects      int              `json:"projects"`
	TotalBudget   decimal.Decimal  `json:"total_budget"`
	Budgeted      decimal.Decimal  `json:"budgeted"`
	Realized      decimal.Decimal  `json:"realized"`
	Committed     decimal.Decimal  `json:"committed"`
	Deviation     *decimal.Decimal `json:"deviation_pct,omitempty"`
	ExecutionRate *decimal.Decimal `json:"execution_rate_pct,omitempty"`
	BU            *decimal.Decimal `json:"bu_pct,omitempty"`
	OverBudget    []string         `json:"over_budget"`
	Critical      []string         `json:"critical"`
}

// criticalDeviation is the deviation percentage above which a project is
// flagged critical.
var criticalDeviation = decimal.NewFromInt(10)

// Compute derives the indicators of p. The budgeted amount is the latest
// approved baseline when one exists, otherwise the project budget.
//
//	deviation      = (realized - budgeted) / budgeted * 100
//	execution rate = realized / budgeted * 100
//	BU             = (realized + committed) / budget * 100
//	CPI            = earned value / realized, earned value = budgeted * progress
//	SPI            = progress / planned progress
func Compute(p Project, txs []Transaction, baselines []Baseline) Metrics {
	m := Metrics{
		Code:     p.Code,
		Name:     p.Name,
		Budget:   p.Budget,
		Budgeted: p.Budget,
	}

	latest := -1
	for _, b := range baselines {
		if b.ProjectCode != p.Code || b.Status == "rejected" {
			continue
		}
		if b.Version > latest {
			latest = b.Version
			m.Budgeted = b.ApprovedBudget
		}
	}

	for _, t := range txs {
		if t.ProjectCode != p.Code {
			continue
		}
		switch t.Kind {
		case KindCommitted:
			m.Committed = m.Committed.Add(t.Amount)
		default:
			m.Realized = m.Realized.Add(t.Amount)
		}
	}

	m.Deviation = percent(m.Realized.Sub(m.Budgeted), m.Budgeted)
	m.ExecutionRate = percent(m.Realized, m.Budgeted)
	m.BU = percent(m.Realized.Add(m.Committed), m.Budget)

	earned := m.Budgeted.Mul(decimal.NewFromFloat(p.ProgressPct)).Div(hundred)
	m.CPI = ratio(earned, m.Realized)
	m.SPI = ratio(decimal.NewFromFloat(p.ProgressPct), decimal.NewFromFloat(p.PlannedProgressPct))
	return m
}

// ComputeAll derives Metrics for every project, keyed by code.
func ComputeAll(projects []Project, txs []Transaction, baselines []Baseline) map[string]Metrics {
	out := make(map[string]Metrics, len(projects))
	for _, p := range projects {
		out[p.Code] = Compute(p, txs, baselines)
	}
	return out
}

// Summarize aggregates per-project metrics.
func Summarize(metrics map[string]Metrics) Summary {
	s := Summary{OverBudget: []string{}, Critical: []string{}}
	codes := make([]string, 0, len(metrics))
	for code := range metrics {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		m := metrics[code]
		s.Projects++
		s.TotalBudget = s.TotalBudget.Add(m.Budget)
		s.Budgeted = s.Budgeted.Add(m.Budgeted)
		s.Realized = s.Realized.Add(m.Realized)
		s.Committed = s.Committed.Add(m.Committed)
		if m.Deviation != nil && m.Deviation.IsPositive() {
			s.OverBudget = append(s.OverBudget, code)
			if m.Deviation.GreaterThan(criticalDeviation) {
				s.Critical = append(s.Critical, code)
			}
		}
	}
	s.Deviation = percent(s.Realized.Sub(s.Budgeted), s.Budgeted)
	s.ExecutionRate = percent(s.Realized, s.Budgeted)
	s.BU = percent(s.Realized.Add(s.Committed), s.TotalBudget)
	return s
}

func percent(num, den decimal.Decimal) *decimal.Decimal {
	if den.IsZero() {
		return nil
	}
	v := num.Mul(hundred).Div(den).Round(2)
	return &v
}

func ratio(num, den decimal.Decimal) *decimal.Decimal {
	if den.IsZero() {
		return nil
	}
	v := num.Div(den).Round(2)
	return &v
}
