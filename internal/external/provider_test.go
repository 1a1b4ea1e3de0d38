package external

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const essay = "Photosynthesis converts light energy into chemical energy in plants. " +
	"Short one. " +
	"Chlorophyll absorbs mostly blue and red wavelengths of visible light. " +
	"The Calvin cycle fixes carbon dioxide into sugars inside the stroma."

func TestNewSelectsProvider(t *testing.T) {
	p, err := New("", WebSearchConfig{})
	require.NoError(t, err)
	assert.Equal(t, ModeDisabled, p.Name())

	p, err = New("MOCK", WebSearchConfig{})
	require.NoError(t, err)
	assert.Equal(t, ModeMock, p.Name())

	_, err = New("web", WebSearchConfig{})
	require.Error(t, err)

	_, err = New("bing", WebSearchConfig{})
	require.Error(t, err)
}

func TestDisabledScoresZero(t *testing.T) {
	res, err := Disabled{}.Score(context.Background(), Query{DocumentID: "d1", Text: essay})
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Empty(t, res.Matches)
}

func TestMockIsDeterministic(t *testing.T) {
	m := NewMock(map[string]float64{"d1": 75}, 10)

	for range 3 {
		res, err := m.Score(context.Background(), Query{DocumentID: "d1"})
		require.NoError(t, err)
		assert.Equal(t, 75.0, res.Score)
	}
	res, err := m.Score(context.Background(), Query{DocumentID: "other"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Score)
	assert.Equal(t, []string{"d1", "d1", "d1", "other"}, m.Calls())

	m.Err = errors.New("lookup failed")
	_, err = m.Score(context.Background(), Query{DocumentID: "d1"})
	require.Error(t, err)
}

func searchServer(t *testing.T, handler func(query string) []searchHit) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(searchResponse{Results: handler(r.URL.Query().Get("q"))})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestWebSearchScoresFoundQueries(t *testing.T) {
	srv, calls := searchServer(t, func(q string) []searchHit {
		if strings.HasPrefix(q, "Photosynthesis") {
			return []searchHit{
				{Title: "Unrelated", URL: "https://example.org/x", Snippet: "nothing to see"},
				{Title: "Biology 101", URL: "https://example.org/bio", Snippet: "... " + q + " ..."},
			}
		}
		return []searchHit{{Title: "Other", URL: "https://example.org/o", Snippet: "quantum chromodynamics"}}
	})

	ws, err := NewWebSearch(WebSearchConfig{Endpoint: srv.URL + "/search", APIKey: "secret", Retries: 0})
	require.NoError(t, err)

	res, err := ws.Score(context.Background(), Query{DocumentID: "d1", Text: essay})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	require.Len(t, res.Matches, 3)
	assert.InDelta(t, 100.0/3, res.Score, 1e-9)

	first := res.Matches[0]
	assert.True(t, first.Found)
	assert.Equal(t, "Biology 101", first.Source)
	assert.Equal(t, "https://example.org/bio", first.URL)
	assert.InDelta(t, 100, first.Ratio, 1e-9)
	assert.False(t, res.Matches[1].Found)
}

func TestWebSearchNoEligibleQueries(t *testing.T) {
	srv, calls := searchServer(t, func(string) []searchHit { return nil })
	ws, err := NewWebSearch(WebSearchConfig{Endpoint: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	res, err := ws.Score(context.Background(), Query{DocumentID: "d1", Text: "Tiny. Also tiny."})
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestWebSearchSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	ws, err := NewWebSearch(WebSearchConfig{Endpoint: srv.URL, Retries: 0})
	require.NoError(t, err)
	_, err = ws.Score(context.Background(), Query{DocumentID: "d1", Text: essay})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestWebSearchRespectsContext(t *testing.T) {
	srv, _ := searchServer(t, func(string) []searchHit { return nil })
	ws, err := NewWebSearch(WebSearchConfig{Endpoint: srv.URL, RatePerSecond: 0.001, Timeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = ws.Score(ctx, Query{DocumentID: "d1", Text: essay})
	require.Error(t, err)
}

func TestMockMatchCarriesQueryText(t *testing.T) {
	m := NewMock(map[string]float64{"d1": 40}, 0)
	res, err := m.Score(context.Background(), Query{DocumentID: "d1", Text: essay})
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	q := res.Matches[0].Query
	assert.NotEqual(t, "d1", q)
	assert.True(t, strings.HasPrefix(essay, q), "query %q should be a prefix of the text", q)
	assert.Len(t, []rune(q), previewRunes)

	res, err = m.Score(context.Background(), Query{DocumentID: "d2", Text: "  Short\n text. "})
	require.NoError(t, err)
	assert.Equal(t, "Short text.", res.Matches[0].Query)
}
