package offline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"simcheck/internal/batch"
	"simcheck/internal/chunk"
	"simcheck/internal/config"
	"simcheck/internal/external"
	"simcheck/internal/risk"
)

type failTransport struct{}

func (f failTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network disabled for offline test")
}

func TestOfflineMode(t *testing.T) {
	original := http.DefaultTransport
	http.DefaultTransport = failTransport{}
	t.Cleanup(func() { http.DefaultTransport = original })

	text := strings.Repeat("This is a sentence. ", 500)
	segments := chunk.SlidingWindow(text, 1500, 200)
	if len(segments) == 0 {
		t.Fatal("expected chunking to work offline")
	}

	provider, err := external.New(config.Default().External.Mode, config.Default().WebSearch())
	if err != nil {
		t.Fatalf("default provider: %v", err)
	}

	b := batch.New(batch.DefaultOptions())
	for i, body := range []string{
		text,
		text + " A different ending.",
		"Glaciers carve U-shaped valleys as they advance and retreat.",
	} {
		if _, err := b.Add("", string(rune('a'+i))+".txt", body); err != nil {
			t.Fatalf("add document: %v", err)
		}
	}

	analysis, err := b.Analyze(context.Background(), provider)
	if err != nil {
		t.Fatalf("expected analysis to work offline: %v", err)
	}
	if analysis.Provider != external.ModeDisabled {
		t.Fatalf("expected the default provider to be disabled, got %s", analysis.Provider)
	}
	if analysis.Reports[0].Tier != risk.TierMedium {
		t.Fatalf("expected near-duplicates without external evidence to be Medium, got %+v", analysis.Reports[0])
	}
	if analysis.Reports[2].Tier != risk.TierLow {
		t.Fatalf("expected unrelated document to be Low, got %+v", analysis.Reports[2])
	}
}
