package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"simcheck/internal/align"
	"simcheck/internal/chunk"
	"simcheck/internal/normalize"
)

type WebSearchConfig struct {
	Endpoint      string
	APIKey        string
	MaxQueries    int
	MinQueryChars int
	MaxQueryWords int
	// MatchRatio is the share of a query, in percent, that a result snippet
	// must cover for the query to count as found.
	MatchRatio    float64
	Timeout       time.Duration
	RatePerSecond float64
	Retries       int
}

func DefaultWebSearchConfig() WebSearchConfig {
	return WebSearchConfig{
		MaxQueries:    3,
		MinQueryChars: 30,
		MaxQueryWords: 32,
		MatchRatio:    60,
		Timeout:       10 * time.Second,
		RatePerSecond: 1,
		Retries:       2,
	}
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearch scores a document by sending its first sentences to a JSON search
// endpoint and checking how much of each query the returned snippets cover.
type WebSearch struct {
	cfg     WebSearchConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

func NewWebSearch(cfg WebSearchConfig) (*WebSearch, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("web search endpoint is empty")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("parse web search endpoint: %w", err)
	}
	def := DefaultWebSearchConfig()
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = def.MaxQueries
	}
	if cfg.MinQueryChars < 0 {
		cfg.MinQueryChars = def.MinQueryChars
	}
	if cfg.MaxQueryWords <= 0 {
		cfg.MaxQueryWords = def.MaxQueryWords
	}
	if cfg.MatchRatio <= 0 || cfg.MatchRatio > 100 {
		cfg.MatchRatio = def.MatchRatio
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = retryLogger{}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &WebSearch{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

func (w *WebSearch) Name() string { return ModeWeb }

func (w *WebSearch) Score(ctx context.Context, q Query) (Result, error) {
	queries := chunk.Queries(q.Text, w.cfg.MaxQueries, w.cfg.MinQueryChars, w.cfg.MaxQueryWords)
	if len(queries) == 0 {
		return Result{Score: 0, Matches: []Match{}}, nil
	}

	matches := make([]Match, 0, len(queries))
	found := 0
	for _, query := range queries {
		if err := w.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("wait for rate limiter: %w", err)
		}
		hits, err := w.search(ctx, query)
		if err != nil {
			return Result{}, err
		}
		m := bestMatch(query, hits)
		if m.Ratio >= w.cfg.MatchRatio {
			m.Found = true
			found++
		}
		matches = append(matches, m)
	}

	score := 100 * float64(found) / float64(len(queries))
	log.Debug().
		Str("document_id", q.DocumentID).
		Int("queries", len(queries)).
		Int("found", found).
		Float64("score", score).
		Msg("web search lookup completed")
	return Result{Score: score, Matches: matches}, nil
}

func (w *WebSearch) search(ctx context.Context, query string) ([]searchHit, error) {
	u, err := url.Parse(w.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	values := u.Query()
	values.Set("q", query)
	u.RawQuery = values.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if w.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Results, nil
}

// bestMatch returns the hit whose snippet covers the largest share of query.
func bestMatch(query string, hits []searchHit) Match {
	best := Match{Query: query}
	nq := normalize.Normalize(query)
	total := len([]rune(nq))
	if total == 0 {
		return best
	}
	for _, h := range hits {
		covered := 0
		for _, blk := range align.MatchingBlocks(nq, normalize.Normalize(h.Snippet)) {
			covered += blk.Size
		}
		ratio := 100 * float64(covered) / float64(total)
		if ratio > best.Ratio {
			best.Ratio = ratio
			best.Source = h.Title
			best.URL = h.URL
		}
	}
	return best
}

// retryLogger routes retryablehttp's leveled logging into zerolog.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) { log.Error().Fields(kv).Msg(msg) }
func (retryLogger) Info(msg string, kv ...interface{})  { log.Debug().Fields(kv).Msg(msg) }
func (retryLogger) Debug(msg string, kv ...interface{}) { log.Trace().Fields(kv).Msg(msg) }
func (retryLogger) Warn(msg string, kv ...interface{})  { log.Warn().Fields(kv).Msg(msg) }
