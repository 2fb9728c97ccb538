package portfolio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/portfolio-ai/internal/db"
)

// ErrNotFound is returned when a project code does not exist.
var ErrNotFound = errors.New("not found")

// Store provides read access to the portfolio tables plus the insert helpers
// used by fixture import.
type Store struct {
	db *db.DB
}

// NewStore creates a new portfolio store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

const projectColumns = `code, name, area, business_unit, category, status, manager, budget,
	start_date, end_date, progress_pct, planned_progress_pct`

// ListProjects returns up to limit projects ordered by code. limit <= 0
// means no limit.
func (s *Store) ListProjects(ctx context.Context, limit int) ([]Project, error) {
	var projects []Project
	query := "SELECT " + projectColumns + " FROM projects ORDER BY code" + limitClause(limit)
	if err := s.db.SelectContext(ctx, &projects, s.db.Q(query)); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a single project by code.
func (s *Store) GetProject(ctx context.Context, code string) (*Project, error) {
	var p Project
	query := "SELECT " + projectColumns + " FROM projects WHERE code = ?"
	if err := s.db.GetContext(ctx, &p, s.db.Q(query), code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("getting project %s: %w", code, err)
	}
	return &p, nil
}

const transactionColumns = `id, project_code, date, kind, description, account, supplier, amount`

// ListTransactions returns the most recent transactions first.
func (s *Store) ListTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	var txs []Transaction
	query := "SELECT " + transactionColumns + " FROM transactions ORDER BY date DESC, id" + limitClause(limit)
	if err := s.db.SelectContext(ctx, &txs, s.db.Q(query)); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

// ListProjectTransactions returns every transaction of one project.
func (s *Store) ListProjectTransactions(ctx context.Context, code string) ([]Transaction, error) {
	var txs []Transaction
	query := "SELECT " + transactionColumns + " FROM transactions WHERE project_code = ? ORDER BY date DESC, id"
	if err := s.db.SelectContext(ctx, &txs, s.db.Q(query), code); err != nil {
		return nil, fmt.Errorf("listing transactions for %s: %w", code, err)
	}
	return txs, nil
}

const baselineColumns = `id, project_code, version, approved_budget, approved_at, status, scope`

// ListBaselines returns baselines ordered by project and version.
func (s *Store) ListBaselines(ctx context.Context, limit int) ([]Baseline, error) {
	var baselines []Baseline
	query := "SELECT " + baselineColumns + " FROM baselines ORDER BY project_code, version DESC" + limitClause(limit)
	if err := s.db.SelectContext(ctx, &baselines, s.db.Q(query)); err != nil {
		return nil, fmt.Errorf("listing baselines: %w", err)
	}
	return baselines, nil
}

// ListProjectBaselines returns the baselines of one project, newest first.
func (s *Store) ListProjectBaselines(ctx context.Context, code string) ([]Baseline, error) {
	var baselines []Baseline
	query := "SELECT " + baselineColumns + " FROM baselines WHERE project_code = ? ORDER BY version DESC"
	if err := s.db.SelectContext(ctx, &baselines, s.db.Q(query), code); err != nil {
		return nil, fmt.Errorf("listing baselines for %s: %w", code, err)
	}
	return baselines, nil
}

// ListDocuments returns documents matching f, newest first.
func (s *Store) ListDocuments(ctx context.Context, f DocumentFilter, limit int) ([]Document, error) {
	var (
		where []string
		args  []any
	)
	if f.DocumentType != "" {
		where = append(where, "LOWER(doc_type) = LOWER(?)")
		args = append(args, f.DocumentType)
	}
	if f.Area != "" {
		where = append(where, "LOWER(area) = LOWER(?)")
		args = append(args, f.Area)
	}
	if f.Project != "" {
		where = append(where, "project_code = ?")
		args = append(args, f.Project)
	}
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}

	query := "SELECT id, title, doc_type, project_code, area, date, tags, content FROM documents"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id" + limitClause(limit)

	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, s.db.Q(query), args...); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// UpsertProject inserts or replaces a project.
func (s *Store) UpsertProject(ctx context.Context, p Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (:code, :name, :area, :business_unit, :category, :status, :manager, :budget,
			:start_date, :end_date, :progress_pct, :planned_progress_pct)
		ON CONFLICT (code) DO UPDATE SET
			name = excluded.name, area = excluded.area, business_unit = excluded.business_unit,
			category = excluded.category, status = excluded.status, manager = excluded.manager,
			budget = excluded.budget, start_date = excluded.start_date, end_date = excluded.end_date,
			progress_pct = excluded.progress_pct, planned_progress_pct = excluded.planned_progress_pct`
	if _, err := s.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("upserting project %s: %w", p.Code, err)
	}
	return nil
}

// InsertTransaction inserts or replaces a transaction.
func (s *Store) InsertTransaction(ctx context.Context, t Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES (:id, :project_code, :date, :kind, :description, :account, :supplier, :amount)
		ON CONFLICT (id) DO UPDATE SET
			project_code = excluded.project_code, date = excluded.date, kind = excluded.kind,
			description = excluded.description, account = excluded.account,
			supplier = excluded.supplier, amount = excluded.amount`
	if _, err := s.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

// InsertBaseline inserts or replaces a baseline.
func (s *Store) InsertBaseline(ctx context.Context, b Baseline) error {
	query := `INSERT INTO baselines (` + baselineColumns + `)
		VALUES (:id, :project_code, :version, :approved_budget, :approved_at, :status, :scope)
		ON CONFLICT (id) DO UPDATE SET
			project_code = excluded.project_code, version = excluded.version,
			approved_budget = excluded.approved_budget, approved_at = excluded.approved_at,
			status = excluded.status, scope = excluded.scope`
	if _, err := s.db.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("inserting baseline %s: %w", b.ID, err)
	}
	return nil
}

// InsertDocument inserts or replaces a document.
func (s *Store) InsertDocument(ctx context.Context, d Document) error {
	query := `INSERT INTO documents (id, title, doc_type, project_code, area, date, tags, content)
		VALUES (:id, :title, :doc_type, :project_code, :area, :date, :tags, :content)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title, doc_type = excluded.doc_type, project_code = excluded.project_code,
			area = excluded.area, date = excluded.date, tags = excluded.tags, content = excluded.content`
	if _, err := s.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("inserting document %s: %w", d.ID, err)
	}
	return nil
}

// Ping checks the store connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

// ProjectMetrics computes the indicators of a single project from all of its
// transactions and baselines.
func (s *Store) ProjectMetrics(ctx context.Context, code string) (Metrics, error) {
	p, err := s.GetProject(ctx, code)
	if err != nil {
		return Metrics{}, err
	}
	txs, err := s.ListProjectTransactions(ctx, code)
	if err != nil {
		return Metrics{}, err
	}
	baselines, err := s.ListProjectBaselines(ctx, code)
	if err != nil {
		return Metrics{}, err
	}
	return Compute(*p, txs, baselines), nil
}

// Summary aggregates indicators over every project.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	projects, err := s.ListProjects(ctx, 0)
	if err != nil {
		return Summary{}, err
	}
	txs, err := s.ListTransactions(ctx, 0)
	if err != nil {
		return Summary{}, err
	}
	baselines, err := s.ListBaselines(ctx, 0)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(ComputeAll(projects, txs, baselines)), nil
}
