// Package interactions keeps a log of every insight pipeline run.
package interactions

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Record is one finished pipeline run.
type Record struct {
	ID           string    `db:"id" json:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UseCase      string    `db:"use_case" json:"use_case"`
	Prompt       string    `db:"prompt" json:"prompt"`
	Outcome      string    `db:"outcome" json:"outcome"`
	ErrorKind    string    `db:"error_kind" json:"error_kind,omitempty"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	SchemaErrors ErrorList `db:"schema_errors" json:"schema_errors,omitempty"`
	Provider     string    `db:"provider" json:"provider"`
	Model        string    `db:"model" json:"model"`
	InputTokens  int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens int       `db:"output_tokens" json:"output_tokens"`
	CostUSD      float64   `db:"cost_usd" json:"cost_usd"`
	LatencyMS    int64     `db:"latency_ms" json:"latency_ms"`
	Response     string    `db:"response" json:"response"`
}

// Filter narrows List results.
type Filter struct {
	UseCase string
	Outcome string
	Since   *time.Time
	Limit   int
	Offset  int
}

// ErrorList is stored newline-separated.
type ErrorList []string

// Value implements driver.Valuer.
func (l ErrorList) Value() (driver.Value, error) {
	return strings.Join(l, "\n"), nil
}

// Scan implements sql.Scanner.
func (l *ErrorList) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scanning error list: unsupported type %T", src)
	}
	if s == "" {
		*l = nil
		return nil
	}
	*l = strings.Split(s, "\n")
	return nil
}
