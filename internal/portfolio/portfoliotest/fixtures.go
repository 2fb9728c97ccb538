// Package portfoliotest provides an in-memory portfolio store and sample
// rows for tests.
package portfoliotest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/portfolio-ai/internal/db"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
)

// Fixture is a set of rows to load.
type Fixture struct {
	Projects     []portfolio.Project
	Transactions []portfolio.Transaction
	Baselines    []portfolio.Baseline
	Documents    []portfolio.Document
}

// NewStore opens an in-memory database closed at test cleanup.
func NewStore(t testing.TB) (*portfolio.Store, *db.DB) {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return portfolio.NewStore(d), d
}

// Seed inserts every row of f.
func Seed(t testing.TB, s *portfolio.Store, f Fixture) {
	t.Helper()
	ctx := context.Background()
	for _, p := range f.Projects {
		require.NoError(t, s.UpsertProject(ctx, p))
	}
	for _, tx := range f.Transactions {
		require.NoError(t, s.InsertTransaction(ctx, tx))
	}
	for _, b := range f.Baselines {
		require.NoError(t, s.InsertBaseline(ctx, b))
	}
	for _, d := range f.Documents {
		require.NoError(t, s.InsertDocument(ctx, d))
	}
}

// Small is two projects, three transactions and one baseline.
func Small() Fixture {
	return Fixture{
		Projects: []portfolio.Project{
			{Code: "PRJ-001", Name: "Subestação Norte", Area: "Engenharia", Category: "capex", Status: "active",
				Budget: dec("1000000"), ProgressPct: 50, PlannedProgressPct: 60},
			{Code: "PRJ-002", Name: "ERP Upgrade", Area: "TI", Category: "opex", Status: "active",
				Budget: dec("500000"), ProgressPct: 80, PlannedProgressPct: 80},
		},
		Transactions: []portfolio.Transaction{
			{ID: "tx-1", ProjectCode: "PRJ-001", Date: "2024-01-10", Kind: portfolio.KindRealized, Description: "Transformadores", Amount: dec("600000")},
			{ID: "tx-2", ProjectCode: "PRJ-001", Date: "2024-02-10", Kind: portfolio.KindRealized, Description: "Montagem", Amount: dec("300000")},
			{ID: "tx-3", ProjectCode: "PRJ-002", Date: "2024-03-15", Kind: portfolio.KindRealized, Description: "Licenças", Amount: dec("450000")},
		},
		Baselines: []portfolio.Baseline{
			{ID: "bl-1", ProjectCode: "PRJ-001", Version: 1, ApprovedBudget: dec("800000"), ApprovedAt: "2023-12-01", Status: "approved"},
		},
	}
}

// Documents returns sample documents of two types and areas.
func Documents() []portfolio.Document {
	return []portfolio.Document{
		{ID: "doc-1", Title: "Contrato de fornecimento de transformadores", DocType: "contrato", ProjectCode: "PRJ-001",
			Area: "Engenharia", Date: "2024-01-05", Tags: portfolio.Tags{"fornecedor", "transformador"},
			Content: "Contrato firmado com fornecedor para entrega de transformadores."},
		{ID: "doc-2", Title: "Ata de reunião de acompanhamento", DocType: "ata", ProjectCode: "PRJ-002",
			Area: "TI", Date: "2024-03-20", Tags: portfolio.Tags{"reunião"},
			Content: "Reunião mensal do projeto ERP. Cronograma mantido."},
		{ID: "doc-3", Title: "Aditivo contratual", DocType: "contrato", ProjectCode: "PRJ-002",
			Area: "TI", Date: "2024-04-02", Tags: portfolio.Tags{"aditivo"},
			Content: "Aditivo de prazo e valor do contrato de licenças."},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
