package interactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/portfolio-ai/internal/db"
)

// ErrNotFound is returned by Get for an unknown ID.
var ErrNotFound = errors.New("interaction not found")

// maxStoredText caps prompt and response columns.
const maxStoredText = 16000

// Store persists interaction records in ai_interactions.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts rec. An empty ID is replaced by a UUID and a zero
// CreatedAt by the current time. The stored ID is returned.
func (s *Store) Record(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Prompt = clip(rec.Prompt)
	rec.Response = clip(rec.Response)

	query := `INSERT INTO ai_interactions (
		id, created_at, use_case, prompt, outcome, error_kind, error_message,
		schema_errors, provider, model, input_tokens, output_tokens, cost_usd,
		latency_ms, response
	) VALUES (
		:id, :created_at, :use_case, :prompt, :outcome, :error_kind, :error_message,
		:schema_errors, :provider, :model, :input_tokens, :output_tokens, :cost_usd,
		:latency_ms, :response
	)`
	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return "", fmt.Errorf("inserting interaction: %w", err)
	}
	return rec.ID, nil
}

const columns = `id, created_at, use_case, prompt, outcome, error_kind, error_message,
	schema_errors, provider, model, input_tokens, output_tokens, cost_usd, latency_ms, response`

// Get returns a single record.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	query := "SELECT " + columns + " FROM ai_interactions WHERE id = ?"
	if err := s.db.GetContext(ctx, &rec, s.db.Q(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting interaction %s: %w", id, err)
	}
	return &rec, nil
}

// List returns records matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	var (
		clauses []string
		args    []any
	)
	if f.UseCase != "" {
		clauses = append(clauses, "use_case = ?")
		args = append(args, f.UseCase)
	}
	if f.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, f.Outcome)
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}

	query := "SELECT " + columns + " FROM ai_interactions"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	var recs []Record
	if err := s.db.SelectContext(ctx, &recs, s.db.Q(query), args...); err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}
	return recs, nil
}

// DeleteBefore removes records older than before and returns how many
// were deleted.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Q("DELETE FROM ai_interactions WHERE created_at < ?"), before.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting old interactions: %w", err)
	}
	return res.RowsAffected()
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxStoredText {
		return s
	}
	return string(r[:maxStoredText])
}
