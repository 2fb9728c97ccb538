package portfolio

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// DocumentFilter narrows the documents placed into a search prompt. Zero
// fields do not filter. From and To are inclusive ISO dates.
type DocumentFilter struct {
	DocumentType string `json:"documentType,omitempty"`
	Area         string `json:"area,omitempty"`
	Project      string `json:"project,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
}

// IsZero reports whether no filter is set.
func (f DocumentFilter) IsZero() bool {
	return f == DocumentFilter{}
}

// Describe renders the filter as prompt text; empty when no filter is set.
func (f DocumentFilter) Describe() string {
	var parts []string
	if f.DocumentType != "" {
		parts = append(parts, "tipo de documento = "+f.DocumentType)
	}
	if f.Area != "" {
		parts = append(parts, "área = "+f.Area)
	}
	if f.Project != "" {
		parts = append(parts, "projeto = "+f.Project)
	}
	switch {
	case f.From != "" && f.To != "":
		parts = append(parts, fmt.Sprintf("período entre %s e %s", f.From, f.To))
	case f.From != "":
		parts = append(parts, "a partir de "+f.From)
	case f.To != "":
		parts = append(parts, "até "+f.To)
	}
	return strings.Join(parts, "; ")
}

// Match applies the filter to a document in memory.
func (f DocumentFilter) Match(d Document) bool {
	if f.DocumentType != "" && !strings.EqualFold(d.DocType, f.DocumentType) {
		return false
	}
	if f.Area != "" && !strings.EqualFold(d.Area, f.Area) {
		return false
	}
	if f.Project != "" && d.ProjectCode != f.Project {
		return false
	}
	if f.From != "" && d.Date < f.From {
		return false
	}
	if f.To != "" && d.Date > f.To {
		return false
	}
	return true
}

// ParseFilters converts the loosely typed filters object of a search request
// into a DocumentFilter. dateRange accepts {"start","end"}, {"from","to"},
// "YYYY-MM-DD..YYYY-MM-DD", or a relative window such as "last_30_days".
// Unknown keys and the value "all" are ignored.
func ParseFilters(raw map[string]any, now time.Time) (DocumentFilter, error) {
	var f DocumentFilter
	for key, value := range raw {
		switch key {
		case "documentType", "document_type", "docType":
			f.DocumentType = stringValue(value)
		case "area":
			f.Area = stringValue(value)
		case "project", "projectCode", "project_code":
			f.Project = stringValue(value)
		case "dateRange", "date_range":
			from, to, err := parseDateRange(value, now)
			if err != nil {
				return DocumentFilter{}, err
			}
			f.From, f.To = from, to
		}
	}
	return f, nil
}

func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") || strings.EqualFold(s, "todos") {
		return ""
	}
	return s
}

func parseDateRange(v any, now time.Time) (string, string, error) {
	switch r := v.(type) {
	case nil:
		return "", "", nil
	case map[string]any:
		from := firstString(r, "start", "from")
		to := firstString(r, "end", "to")
		if err := checkDate(from); err != nil {
			return "", "", err
		}
		if err := checkDate(to); err != nil {
			return "", "", err
		}
		return from, to, nil
	case string:
		s := strings.TrimSpace(r)
		if s == "" || strings.EqualFold(s, "all") {
			return "", "", nil
		}
		if from, to, ok := strings.Cut(s, ".."); ok {
			from, to = strings.TrimSpace(from), strings.TrimSpace(to)
			if err := checkDate(from); err != nil {
				return "", "", err
			}
			if err := checkDate(to); err != nil {
				return "", "", err
			}
			return from, to, nil
		}
		days, ok := relativeWindows[s]
		if !ok {
			return "", "", fmt.Errorf("unknown dateRange %q", s)
		}
		return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout), nil
	default:
		return "", "", fmt.Errorf("unsupported dateRange type %T", v)
	}
}

var relativeWindows = map[string]int{
	"last_7_days":   7,
	"last_30_days":  30,
	"last_90_days":  90,
	"last_6_months": 182,
	"last_year":     365,
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func checkDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}
