package external

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type Query struct {
	DocumentID string
	Text       string
}

// Match is one lookup query and the best source found for it.
type Match struct {
	Query  string  `json:"query"`
	Source string  `json:"source"`
	URL    string  `json:"url"`
	Ratio  float64 `json:"ratio"`
	Found  bool    `json:"found"`
}

type Result struct {
	Score   float64 `json:"score"`
	Matches []Match `json:"matches"`
}

// Provider produces the "found online" score for a single document. The
// score is in [0,100]; implementations own their timeouts and retries.
type Provider interface {
	Name() string
	Score(ctx context.Context, q Query) (Result, error)
}

const (
	ModeDisabled = "disabled"
	ModeMock     = "mock"
	ModeWeb      = "web"
)

func New(mode string, web WebSearchConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeDisabled:
		return Disabled{}, nil
	case ModeMock:
		return NewMock(nil, 0), nil
	case ModeWeb:
		return NewWebSearch(web)
	default:
		return nil, fmt.Errorf("unknown external provider mode: %s", mode)
	}
}

// Disabled is used when the online check is turned off.
type Disabled struct{}

func (Disabled) Name() string { return ModeDisabled }

func (Disabled) Score(context.Context, Query) (Result, error) {
	return Result{Score: 0, Matches: []Match{}}, nil
}

// Mock returns fixed scores per document ID and records every call.
type Mock struct {
	Scores  map[string]float64
	Default float64
	Err     error

	mu    sync.Mutex
	calls []string
}

func NewMock(scores map[string]float64, fallback float64) *Mock {
	if scores == nil {
		scores = map[string]float64{}
	}
	return &Mock{Scores: scores, Default: fallback}
}

func (m *Mock) Name() string { return ModeMock }

func (m *Mock) Score(ctx context.Context, q Query) (Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q.DocumentID)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.Err != nil {
		return Result{}, m.Err
	}
	score, ok := m.Scores[q.DocumentID]
	if !ok {
		score = m.Default
	}
	return Result{
		Score:   score,
		Matches: []Match{{Query: queryPreview(q.Text), Source: "mock", Ratio: score, Found: score > 0}},
	}, nil
}

const previewRunes = 80

// queryPreview is the first previewRunes runes of text with whitespace collapsed.
func queryPreview(text string) string {
	r := []rune(strings.Join(strings.Fields(text), " "))
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}

func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
