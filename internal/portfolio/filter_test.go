package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want DocumentFilter
	}{
		{"empty", nil, DocumentFilter{}},
		{"type and area", map[string]any{"documentType": "contract", "area": "TI"},
			DocumentFilter{DocumentType: "contract", Area: "TI"}},
		{"all is ignored", map[string]any{"documentType": "all", "area": " "}, DocumentFilter{}},
		{"object range", map[string]any{"dateRange": map[string]any{"start": "2024-01-01", "end": "2024-03-31"}},
			DocumentFilter{From: "2024-01-01", To: "2024-03-31"}},
		{"string range", map[string]any{"dateRange": "2024-01-01..2024-02-01"},
			DocumentFilter{From: "2024-01-01", To: "2024-02-01"}},
		{"relative range", map[string]any{"dateRange": "last_30_days"},
			DocumentFilter{From: "2024-05-31", To: "2024-06-30"}},
		{"project alias", map[string]any{"projectCode": "PRJ-001", "unknown": 42},
			DocumentFilter{Project: "PRJ-001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilters(tt.raw, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFiltersInvalid(t *testing.T) {
	_, err := ParseFilters(map[string]any{"dateRange": "yesterday-ish"}, fixedNow)
	assert.Error(t, err)

	_, err = ParseFilters(map[string]any{"dateRange": map[string]any{"start": "01/02/2024"}}, fixedNow)
	assert.ErrorContains(t, err, "YYYY-MM-DD")

	_, err = ParseFilters(map[string]any{"dateRange": 7}, fixedNow)
	assert.Error(t, err)
}

func TestDocumentFilterMatch(t *testing.T) {
	doc := testDocuments()[0]
	assert.True(t, DocumentFilter{}.Match(doc))
	assert.True(t, DocumentFilter{DocumentType: "Contract", Area: "engenharia"}.Match(doc))
	assert.False(t, DocumentFilter{Project: "PRJ-002"}.Match(doc))
	assert.False(t, DocumentFilter{From: "2024-02-01"}.Match(doc))
	assert.True(t, DocumentFilter{To: "2024-01-05"}.Match(doc))
}

func TestDocumentFilterDescribe(t *testing.T) {
	assert.Empty(t, DocumentFilter{}.Describe())
	assert.True(t, DocumentFilter{}.IsZero())

	f := DocumentFilter{DocumentType: "contract", From: "2024-01-01", To: "2024-03-31"}
	assert.Equal(t, "tipo de documento = contract; período entre 2024-01-01 e 2024-03-31", f.Describe())
}
