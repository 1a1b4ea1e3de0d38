package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"simcheck/internal/align"
	"simcheck/internal/compare"
	"simcheck/internal/external"
	"simcheck/internal/ingest"
	"simcheck/internal/risk"
)

const (
	DefaultMaxDocuments  = 10
	defaultLookupWorkers = 4
)

var ErrBatchFull = errors.New("batch is full")

type Options struct {
	MaxDocuments  int
	Threshold     int
	Workers       int
	LookupWorkers int
	Logger        compare.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxDocuments:  DefaultMaxDocuments,
		Threshold:     align.DefaultThreshold,
		LookupWorkers: defaultLookupWorkers,
	}
}

// Batch is the set of documents analyzed together. It is owned by the caller
// and not safe for concurrent Add calls.
type Batch struct {
	opts  Options
	docs  []*compare.Document
	byKey map[string]*compare.Document
}

func New(opts Options) *Batch {
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = DefaultMaxDocuments
	}
	if opts.LookupWorkers <= 0 {
		opts.LookupWorkers = defaultLookupWorkers
	}
	return &Batch{
		opts:  opts,
		byKey: map[string]*compare.Document{},
	}
}

// Add registers a document. Adding a filename already in the batch returns
// the existing document. An empty display name becomes "Student N".
func (b *Batch) Add(displayName, filename, text string) (*compare.Document, error) {
	return b.add(displayName, filename, strings.TrimSpace(filename), text)
}

// AddFile ingests path and registers it. Files are told apart by their
// cleaned absolute path; the base name is only used for display.
func (b *Batch) AddFile(path string) (*compare.Document, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	key = "file:" + filepath.Clean(key)
	if existing, ok := b.byKey[key]; ok {
		return existing, nil
	}
	if len(b.docs) >= b.opts.MaxDocuments {
		return nil, fmt.Errorf("add %s: %w (max %d)", path, ErrBatchFull, b.opts.MaxDocuments)
	}
	parsed, err := ingest.ParseFile(path)
	if err != nil {
		b.log("RISK", "document rejected", fmt.Sprintf("file=%q err=%v", path, err))
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	return b.add("", filepath.Base(path), key, parsed.Text)
}

func (b *Batch) add(displayName, filename, key, text string) (*compare.Document, error) {
	if key != "" {
		if existing, ok := b.byKey[key]; ok {
			return existing, nil
		}
	}
	if len(b.docs) >= b.opts.MaxDocuments {
		return nil, fmt.Errorf("add %s: %w (max %d)", filename, ErrBatchFull, b.opts.MaxDocuments)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = fmt.Sprintf("Student %d", len(b.docs)+1)
	}
	doc := compare.NewDocument(displayName, filename, text)
	b.docs = append(b.docs, doc)
	if key != "" {
		b.byKey[key] = doc
	}
	b.log("INFO", "document added", fmt.Sprintf("id=%s name=%q file=%q chars=%d", doc.ID, doc.DisplayName, filename, len([]rune(text))))
	return doc, nil
}

func (b *Batch) Documents() []*compare.Document {
	return append([]*compare.Document(nil), b.docs...)
}

func (b *Batch) Len() int {
	return len(b.docs)
}

// Analysis is the result of one run over a batch. It is rebuilt from scratch
// on every Analyze call.
type Analysis struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Provider  string
	Threshold int
	Documents []*compare.Document
	Matrix    *compare.Matrix
	Reports   []risk.Report
	External  map[string]external.Result
}

func (b *Batch) Analyze(ctx context.Context, provider external.Provider) (*Analysis, error) {
	if provider == nil {
		provider = external.Disabled{}
	}
	started := time.Now()
	runID := uuid.NewString()
	b.log("ANALYSIS", "analysis started", fmt.Sprintf("run_id=%s documents=%d provider=%s", runID, len(b.docs), provider.Name()))

	matrix, err := compare.CompareAll(ctx, b.docs, compare.Options{
		Threshold: b.opts.Threshold,
		Workers:   b.opts.Workers,
		Logger:    b.opts.Logger,
	})
	if err != nil {
		b.log("RISK", "analysis failed", err.Error())
		return nil, err
	}

	results, err := b.lookup(ctx, provider)
	if err != nil {
		b.log("RISK", "external lookup failed", err.Error())
		return nil, err
	}
	scores := make(map[string]float64, len(results))
	for id, r := range results {
		scores[id] = r.Score
	}

	ids := make([]string, 0, len(b.docs))
	for _, d := range b.docs {
		ids = append(ids, d.ID)
	}
	reports, err := risk.ScoreAll(ids, matrix, scores)
	if err != nil {
		b.log("RISK", "risk scoring failed", err.Error())
		return nil, fmt.Errorf("score documents: %w", err)
	}

	a := &Analysis{
		RunID:     runID,
		StartedAt: started,
		Duration:  time.Since(started),
		Provider:  provider.Name(),
		Threshold: b.opts.Threshold,
		Documents: b.Documents(),
		Matrix:    matrix,
		Reports:   reports,
		External:  results,
	}
	b.log("ANALYSIS", "analysis completed", fmt.Sprintf("run_id=%s pairs=%d duration_ms=%d", runID, matrix.Len(), a.Duration.Milliseconds()))
	return a, nil
}

func (b *Batch) lookup(ctx context.Context, provider external.Provider) (map[string]external.Result, error) {
	results := make([]external.Result, len(b.docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.LookupWorkers)
	for i, d := range b.docs {
		if strings.TrimSpace(d.RawText) == "" {
			results[i] = external.Result{Matches: []external.Match{}}
			continue
		}
		g.Go(func() error {
			res, err := provider.Score(gctx, external.Query{DocumentID: d.ID, Text: d.RawText})
			if err != nil {
				return fmt.Errorf("external lookup %s for %s: %w", provider.Name(), d.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]external.Result, len(b.docs))
	for i, d := range b.docs {
		out[d.ID] = results[i]
	}
	return out, nil
}

func (b *Batch) log(level, message, detail string) {
	if b.opts.Logger == nil {
		return
	}
	b.opts.Logger.Log(level, "BATCH", message, detail)
}

func (a *Analysis) Document(id string) (*compare.Document, bool) {
	for _, d := range a.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// Segments returns the matching segments between x and y, materialized from x.
func (a *Analysis) Segments(x, y string) []align.Segment {
	e, ok := a.Matrix.Edge(x, y)
	if !ok {
		return nil
	}
	return e.Segments
}

func (a *Analysis) Report(id string) (risk.Report, bool) {
	for _, r := range a.Reports {
		if r.DocumentID == id {
			return r, true
		}
	}
	return risk.Report{}, false
}
