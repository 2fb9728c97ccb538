package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Source is the read side of the portfolio store.
type Source interface {
	ListProjects(ctx context.Context, limit int) ([]Project, error)
	ListTransactions(ctx context.Context, limit int) ([]Transaction, error)
	ListBaselines(ctx context.Context, limit int) ([]Baseline, error)
	ListDocuments(ctx context.Context, f DocumentFilter, limit int) ([]Document, error)
}

// Limits caps the rows per collection placed into a prompt.
type Limits struct {
	Projects     int
	Transactions int
	Baselines    int
	Documents    int
}

// Need selects which collections a use case reads.
type Need struct {
	Projects     bool
	Transactions bool
	Baselines    bool
	Documents    bool
	// Filter is applied to documents when fetching them.
	Filter DocumentFilter
}

// Snapshot holds the rows fetched for one request.
type Snapshot struct {
	Projects     []Project
	Transactions []Transaction
	Baselines    []Baseline
	Documents    []Document
	// Metrics are the indicators of each project, keyed by code. Nil when
	// the rows they derive from could not be read.
	Metrics map[string]Metrics
	// Degraded names the collections whose fetch failed and were replaced
	// by empty ones.
	Degraded []string
}

// DataContext is the serialized snapshot embedded in a system prompt.
type DataContext struct {
	Text         string
	Projects     int
	Transactions int
	Baselines    int
	Documents    int
}

// Assembler fetches portfolio rows and turns them into a DataContext.
type Assembler struct {
	source Source
	limits Limits
}

// NewAssembler creates an Assembler over source.
func NewAssembler(source Source, limits Limits) *Assembler {
	return &Assembler{source: source, limits: limits}
}

// Fetch reads the collections in need. A failed fetch never aborts the
// request: the collection is left empty and recorded in Degraded.
//
// When projects are needed, their indicators are computed from every
// transaction and baseline, not from the capped rows that are displayed.
func (a *Assembler) Fetch(ctx context.Context, need Need) Snapshot {
	log := zerolog.Ctx(ctx)
	var s Snapshot

	soft := func(name string, err error) {
		log.Warn().Err(err).Str("collection", name).Msg("portfolio fetch failed, using empty collection")
		s.Degraded = append(s.Degraded, name)
	}

	if need.Projects {
		rows, err := a.source.ListProjects(ctx, a.limits.Projects)
		if err != nil {
			soft("projects", err)
		}
		s.Projects = rows
	}
	// Indicators need every row, so the display caps do not apply.
	totals := len(s.Projects) > 0
	txLimit, blLimit := a.limits.Transactions, a.limits.Baselines
	if totals {
		txLimit, blLimit = 0, 0
	}

	var (
		txs       []Transaction
		baselines []Baseline
		txErr     error
		blErr     error
	)
	if need.Transactions || totals {
		txs, txErr = a.source.ListTransactions(ctx, txLimit)
		if txErr != nil {
			soft("transactions", txErr)
		} else if need.Transactions {
			s.Transactions = txs
		}
	}
	if need.Baselines || totals {
		baselines, blErr = a.source.ListBaselines(ctx, blLimit)
		if blErr != nil {
			soft("baselines", blErr)
		} else if need.Baselines {
			s.Baselines = baselines
		}
	}
	if totals && txErr == nil && blErr == nil {
		s.Metrics = ComputeAll(s.Projects, txs, baselines)
	}

	if need.Documents {
		rows, err := a.source.ListDocuments(ctx, need.Filter, a.limits.Documents)
		if err != nil {
			soft("documents", err)
		}
		s.Documents = rows
	}
	return s
}

// Assemble fetches the collections in need and serializes them.
func (a *Assembler) Assemble(ctx context.Context, need Need) (Snapshot, DataContext) {
	s := a.Fetch(ctx, need)
	return s, a.Build(s, need)
}

// Build serializes s using the assembler's limits.
func (a *Assembler) Build(s Snapshot, need Need) DataContext {
	return Build(s, need, a.limits)
}

type projectView struct {
	Code            string           `json:"codigo"`
	Name            string           `json:"nome"`
	Area            string           `json:"area,omitempty"`
	BusinessUnit    string           `json:"unidade,omitempty"`
	Category        string           `json:"categoria,omitempty"`
	Status          string           `json:"status,omitempty"`
	Manager         string           `json:"gestor,omitempty"`
	Budget          decimal.Decimal  `json:"orcamento"`
	Budgeted        *decimal.Decimal `json:"orcado_baseline,omitempty"`
	Realized        *decimal.Decimal `json:"realizado,omitempty"`
	Committed       *decimal.Decimal `json:"comprometido,omitempty"`
	Deviation       *decimal.Decimal `json:"desvio_pct,omitempty"`
	ExecutionRate   *decimal.Decimal `json:"execucao_pct,omitempty"`
	BU              *decimal.Decimal `json:"bu_pct,omitempty"`
	CPI             *decimal.Decimal `json:"cpi,omitempty"`
	SPI             *decimal.Decimal `json:"spi,omitempty"`
	StartDate       string           `json:"inicio,omitempty"`
	EndDate         string           `json:"fim,omitempty"`
	Progress        float64          `json:"progresso_pct"`
	PlannedProgress float64          `json:"progresso_planejado_pct"`
}

type transactionView struct {
	Project     string          `json:"projeto"`
	Date        string          `json:"data"`
	Kind        string          `json:"tipo"`
	Description string          `json:"descricao,omitempty"`
	Account     string          `json:"conta,omitempty"`
	Supplier    string          `json:"fornecedor,omitempty"`
	Amount      decimal.Decimal `json:"valor"`
}

type baselineView struct {
	Project        string          `json:"projeto"`
	Version        int             `json:"versao"`
	ApprovedBudget decimal.Decimal `json:"orcamento_aprovado"`
	ApprovedAt     string          `json:"aprovado_em,omitempty"`
	Status         string          `json:"status,omitempty"`
	Scope          string          `json:"escopo,omitempty"`
}

type documentView struct {
	ID      string   `json:"id"`
	Title   string   `json:"titulo"`
	Type    string   `json:"tipo"`
	Project string   `json:"projeto,omitempty"`
	Area    string   `json:"area,omitempty"`
	Date    string   `json:"data,omitempty"`
	Tags    []string `json:"tags"`
	Excerpt string   `json:"conteudo"`
}

// maxExcerpt bounds the document text placed into a prompt, in runes.
const maxExcerpt = 600

// Build serializes the needed collections of s into labelled JSON blocks.
// Only display fields are projected; internal row IDs are dropped except
// for documents, whose ID is returned in search results.
func Build(s Snapshot, need Need, limits Limits) DataContext {
	var sb strings.Builder
	dc := DataContext{}

	if need.Projects {
		projects := capRows(s.Projects, limits.Projects)
		views := make([]projectView, 0, len(projects))
		for _, p := range projects {
			v := projectView{
				Code: p.Code, Name: p.Name, Area: p.Area, BusinessUnit: p.BusinessUnit,
				Category: p.Category, Status: p.Status, Manager: p.Manager, Budget: p.Budget,
				StartDate: p.StartDate, EndDate: p.EndDate,
				Progress: p.ProgressPct, PlannedProgress: p.PlannedProgressPct,
			}
			// Without indicators the totals are unknown, not zero.
			if m, ok := s.Metrics[p.Code]; ok {
				v.Budgeted, v.Realized, v.Committed = &m.Budgeted, &m.Realized, &m.Committed
				v.Deviation, v.ExecutionRate, v.BU, v.CPI, v.SPI = m.Deviation, m.ExecutionRate, m.BU, m.CPI, m.SPI
			}
			views = append(views, v)
		}
		dc.Projects = len(views)
		writeSection(&sb, "PROJETOS", views)
	}

	if need.Transactions {
		txs := capRows(s.Transactions, limits.Transactions)
		views := make([]transactionView, 0, len(txs))
		for _, t := range txs {
			views = append(views, transactionView{
				Project: t.ProjectCode, Date: t.Date, Kind: t.Kind, Description: t.Description,
				Account: t.Account, Supplier: t.Supplier, Amount: t.Amount,
			})
		}
		dc.Transactions = len(views)
		writeSection(&sb, "TRANSACOES", views)
	}

	if need.Baselines {
		baselines := capRows(s.Baselines, limits.Baselines)
		views := make([]baselineView, 0, len(baselines))
		for _, b := range baselines {
			views = append(views, baselineView{
				Project: b.ProjectCode, Version: b.Version, ApprovedBudget: b.ApprovedBudget,
				ApprovedAt: b.ApprovedAt, Status: b.Status, Scope: b.Scope,
			})
		}
		dc.Baselines = len(views)
		writeSection(&sb, "BASELINES", views)
	}

	if need.Documents {
		docs := capRows(s.Documents, limits.Documents)
		views := make([]documentView, 0, len(docs))
		for _, d := range docs {
			tags := []string(d.Tags)
			if tags == nil {
				tags = []string{}
			}
			views = append(views, documentView{
				ID: d.ID, Title: d.Title, Type: d.DocType, Project: d.ProjectCode,
				Area: d.Area, Date: d.Date, Tags: tags, Excerpt: truncate(d.Content, maxExcerpt),
			})
		}
		dc.Documents = len(views)
		writeSection(&sb, "DOCUMENTOS", views)
	}

	dc.Text = strings.TrimRight(sb.String(), "\n")
	return dc
}

func writeSection[T any](sb *strings.Builder, label string, rows []T) {
	data, err := json.Marshal(rows)
	if err != nil {
		// Views hold only strings, numbers and decimals.
		data = []byte("[]")
	}
	fmt.Fprintf(sb, "%s (%d):\n%s\n\n", label, len(rows), data)
}

func capRows[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
