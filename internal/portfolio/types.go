package portfolio

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction kinds.
const (
	KindRealized  = "realized"
	KindCommitted = "committed"
)

// Project is a capex/opex project as stored in the portfolio database.
type Project struct {
	Code               string          `db:"code" json:"code" yaml:"code"`
	Name               string          `db:"name" json:"name" yaml:"name"`
	Area               string          `db:"area" json:"area" yaml:"area"`
	BusinessUnit       string          `db:"business_unit" json:"business_unit" yaml:"business_unit"`
	Category           string          `db:"category" json:"category" yaml:"category"`
	Status             string          `db:"status" json:"status" yaml:"status"`
	Manager            string          `db:"manager" json:"manager" yaml:"manager"`
	Budget             decimal.Decimal `db:"budget" json:"budget" yaml:"budget"`
	StartDate          string          `db:"start_date" json:"start_date" yaml:"start_date"`
	EndDate            string          `db:"end_date" json:"end_date" yaml:"end_date"`
	ProgressPct        float64         `db:"progress_pct" json:"progress_pct" yaml:"progress_pct"`
	PlannedProgressPct float64         `db:"planned_progress_pct" json:"planned_progress_pct" yaml:"planned_progress_pct"`
}

// Transaction is a realized or committed financial movement on a project.
type Transaction struct {
	ID          string          `db:"id" json:"id" yaml:"id"`
	ProjectCode string          `db:"project_code" json:"project_code" yaml:"project"`
	Date        string          `db:"date" json:"date" yaml:"date"`
	Kind        string          `db:"kind" json:"kind" yaml:"kind"`
	Description string          `db:"description" json:"description" yaml:"description"`
	Account     string          `db:"account" json:"account" yaml:"account"`
	Supplier    string          `db:"supplier" json:"supplier" yaml:"supplier"`
	Amount      decimal.Decimal `db:"amount" json:"amount" yaml:"amount"`
}

// Baseline is a versioned snapshot of a project's approved budget and scope.
type Baseline struct {
	ID             string          `db:"id" json:"id" yaml:"id"`
	ProjectCode    string          `db:"project_code" json:"project_code" yaml:"project"`
	Version        int             `db:"version" json:"version" yaml:"version"`
	ApprovedBudget decimal.Decimal `db:"approved_budget" json:"approved_budget" yaml:"approved_budget"`
	ApprovedAt     string          `db:"approved_at" json:"approved_at" yaml:"approved_at"`
	Status         string          `db:"status" json:"status" yaml:"status"`
	Scope          string          `db:"scope" json:"scope" yaml:"scope"`
}

// Document is a searchable portfolio document (contract, report, minutes).
type Document struct {
	ID          string `db:"id" json:"id" yaml:"id"`
	Title       string `db:"title" json:"title" yaml:"title"`
	DocType     string `db:"doc_type" json:"doc_type" yaml:"type"`
	ProjectCode string `db:"project_code" json:"project_code" yaml:"project"`
	Area        string `db:"area" json:"area" yaml:"area"`
	Date        string `db:"date" json:"date" yaml:"date"`
	Tags        Tags   `db:"tags" json:"tags" yaml:"tags"`
	Content     string `db:"content" json:"content" yaml:"content"`
}

// Tags is a string list stored as a comma-separated column.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scanning tags: unsupported type %T", src)
	}
	var out Tags
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	*t = out
	return nil
}
