// Package importer loads portfolio fixtures from YAML files into the store.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/progress"
)

// File is the YAML layout of a fixture file. Every section is optional.
type File struct {
	Projects     []portfolio.Project     `yaml:"projects"`
	Transactions []portfolio.Transaction `yaml:"transactions"`
	Baselines    []portfolio.Baseline    `yaml:"baselines"`
	Documents    []portfolio.Document    `yaml:"documents"`
}

// Writer persists portfolio rows. *portfolio.Store satisfies it.
type Writer interface {
	UpsertProject(ctx context.Context, p portfolio.Project) error
	InsertTransaction(ctx context.Context, t portfolio.Transaction) error
	InsertBaseline(ctx context.Context, b portfolio.Baseline) error
	InsertDocument(ctx context.Context, d portfolio.Document) error
}

// Stats counts what an import wrote.
type Stats struct {
	Files        int
	Projects     int
	Transactions int
	Baselines    int
	Documents    int
}

// Rows returns the total number of rows written.
func (s Stats) Rows() int {
	return s.Projects + s.Transactions + s.Baselines + s.Documents
}

// Importer writes fixture files through a Writer.
type Importer struct {
	w        Writer
	reporter progress.Reporter
}

// New creates an Importer. A nil reporter disables progress output.
func New(w Writer, reporter progress.Reporter) *Importer {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Importer{w: w, reporter: reporter}
}

// Expand resolves glob patterns (with ** support) to a sorted, de-duplicated
// list of files. A pattern without glob characters must name an existing file.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadFile reads and validates one fixture file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses fixture YAML. Unknown keys are rejected and rows missing
// their identifying fields fail the whole file.
func Decode(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

// normalize checks required fields and derives stable IDs for rows that
// omit one, so re-importing a file updates rows instead of duplicating them.
func (f *File) normalize() error {
	for i, p := range f.Projects {
		if p.Code == "" {
			return fmt.Errorf("projects[%d]: code is required", i)
		}
		if p.Status == "" {
			f.Projects[i].Status = "active"
		}
	}
	for i, t := range f.Transactions {
		if t.ProjectCode == "" {
			return fmt.Errorf("transactions[%d]: project is required", i)
		}
		switch t.Kind {
		case "":
			f.Transactions[i].Kind = portfolio.KindRealized
		case portfolio.KindRealized, portfolio.KindCommitted:
		default:
			return fmt.Errorf("transactions[%d]: kind must be %s or %s", i, portfolio.KindRealized, portfolio.KindCommitted)
		}
		if t.ID == "" {
			f.Transactions[i].ID = stableID("tx", t.ProjectCode, t.Date, t.Description, t.Amount.String())
		}
	}
	for i, b := range f.Baselines {
		if b.ProjectCode == "" {
			return fmt.Errorf("baselines[%d]: project is required", i)
		}
		if b.ID == "" {
			f.Baselines[i].ID = stableID("bl", b.ProjectCode, fmt.Sprint(b.Version))
		}
	}
	for i, d := range f.Documents {
		if d.Title == "" {
			return fmt.Errorf("documents[%d]: title is required", i)
		}
		if d.ID == "" {
			f.Documents[i].ID = stableID("doc", d.Title, d.ProjectCode, d.Date)
		}
	}
	return nil
}

func stableID(parts ...string) string {
	var buf bytes.Buffer
	for _, p := range parts {
		buf.WriteString(p)
		buf.WriteByte(0)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, buf.Bytes()).String()
}

// Import loads every file and writes its rows. Files are validated before
// anything is written, so a malformed file aborts the import untouched.
func (im *Importer) Import(ctx context.Context, paths []string) (Stats, error) {
	files := make([]*File, len(paths))
	for i, path := range paths {
		f, err := LoadFile(path)
		if err != nil {
			return Stats{}, err
		}
		files[i] = f
	}

	log := zerolog.Ctx(ctx)
	var stats Stats
	im.reporter.Start(len(paths))
	defer im.reporter.Finish()

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		im.reporter.Update(i+1, filepath.Base(paths[i]))
		if err := im.write(ctx, f, &stats); err != nil {
			return stats, fmt.Errorf("%s: %w", paths[i], err)
		}
		stats.Files++
		log.Debug().Str("file", paths[i]).Int("projects", len(f.Projects)).
			Int("transactions", len(f.Transactions)).Int("baselines", len(f.Baselines)).
			Int("documents", len(f.Documents)).Msg("fixture imported")
	}
	return stats, nil
}

// write inserts projects first so rows referencing them in the same file
// resolve.
func (im *Importer) write(ctx context.Context, f *File, stats *Stats) error {
	for _, p := range f.Projects {
		if err := im.w.UpsertProject(ctx, p); err != nil {
			return err
		}
		stats.Projects++
	}
	for _, t := range f.Transactions {
		if err := im.w.InsertTransaction(ctx, t); err != nil {
			return err
		}
		stats.Transactions++
	}
	for _, b := range f.Baselines {
		if err := im.w.InsertBaseline(ctx, b); err != nil {
			return err
		}
		stats.Baselines++
	}
	for _, d := range f.Documents {
		if err := im.w.InsertDocument(ctx, d); err != nil {
			return err
		}
		stats.Documents++
	}
	return nil
}
