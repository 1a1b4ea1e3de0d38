package compare

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Log(level, stage, message, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+stage+" "+message+" "+detail)
}

func TestCompareAllRequiresTwoDocuments(t *testing.T) {
	docs := []*Document{NewDocument("Student 1", "a.pdf", "some text")}
	_, err := CompareAll(context.Background(), docs, DefaultOptions())
	if !errors.Is(err, ErrInsufficientInput) {
		t.Fatalf("expected ErrInsufficientInput, got %v", err)
	}
	var insufficient *InsufficientInputError
	if !errors.As(err, &insufficient) || insufficient.Got != 1 {
		t.Fatalf("expected InsufficientInputError with Got=1, got %#v", err)
	}

	if _, err := CompareAll(context.Background(), nil, DefaultOptions()); !errors.Is(err, ErrInsufficientInput) {
		t.Fatalf("expected ErrInsufficientInput for empty batch, got %v", err)
	}
}

func TestCompareAllThreeDocuments(t *testing.T) {
	shared := "the industrial revolution transformed manufacturing across europe and beyond"
	docs := []*Document{
		NewDocument("Student 1", "s1.pdf", "Intro. "+shared+"!"),
		NewDocument("Student 2", "s2.pdf", shared),
		NewDocument("Student 3", "s3.pdf", "Completely unrelated notes about marine biology."),
	}
	logger := &recordingLogger{}
	m, err := CompareAll(context.Background(), docs, Options{Threshold: 20, Workers: 2, Logger: logger})
	if err != nil {
		t.Fatalf("CompareAll failed: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 pairs, got %d", m.Len())
	}

	for _, x := range docs {
		for _, y := range docs {
			rxy, ok1 := m.Ratio(x.ID, y.ID)
			ryx, ok2 := m.Ratio(y.ID, x.ID)
			if !ok1 || !ok2 {
				t.Fatalf("missing ratio for %s/%s", x.DisplayName, y.DisplayName)
			}
			if rxy != ryx {
				t.Fatalf("matrix not symmetric: %v vs %v", rxy, ryx)
			}
			if x == y && rxy != 100 {
				t.Fatalf("expected self ratio 100, got %v", rxy)
			}
		}
	}

	high, _ := m.Ratio(docs[0].ID, docs[1].ID)
	low, _ := m.Ratio(docs[0].ID, docs[2].ID)
	if high <= low {
		t.Fatalf("expected shared-text pair to score higher: %v vs %v", high, low)
	}

	edge, ok := m.Edge(docs[1].ID, docs[0].ID)
	if !ok {
		t.Fatal("expected edge for pair")
	}
	if edge.DocumentA != docs[1].ID {
		t.Fatalf("expected edge oriented from first argument")
	}
	if len(edge.Segments) == 0 {
		t.Fatal("expected shared segment")
	}
	for _, s := range edge.Segments {
		if !strings.Contains(docs[1].NormalizedText(), s.Text) {
			t.Fatalf("segment %q not found in first document", s.Text)
		}
		if []rune(docs[1].NormalizedText())[s.StartInA] != []rune(s.Text)[0] {
			t.Fatalf("segment offset does not point at segment text")
		}
	}

	if len(logger.lines) < 2 {
		t.Fatalf("expected start and completion log lines, got %v", logger.lines)
	}
}

func TestCompareAllRejectsDuplicateIDs(t *testing.T) {
	docs := []*Document{
		NewDocumentWithID("same", "A", "a.txt", "alpha"),
		NewDocumentWithID("same", "B", "b.txt", "beta"),
	}
	if _, err := CompareAll(context.Background(), docs, DefaultOptions()); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestCompareAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []*Document{
		NewDocument("A", "a.txt", "alpha"),
		NewDocument("B", "b.txt", "beta"),
	}
	if _, err := CompareAll(ctx, docs, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDocumentIdentityIndependentOfName(t *testing.T) {
	a := NewDocument("Student 1", "essay.pdf", "Text")
	b := NewDocument("Student 1", "essay.pdf", "Text")
	if a.ID == b.ID {
		t.Fatal("expected distinct ids for documents sharing a display name")
	}
	if a.NormalizedText() != "text" {
		t.Fatalf("expected normalized text, got %q", a.NormalizedText())
	}
	if NewDocument("", "fallback.pdf", "").DisplayName != "fallback.pdf" {
		t.Fatal("expected display name to fall back to filename")
	}
}

func TestMatrixPeersAndEdges(t *testing.T) {
	docs := []*Document{
		NewDocumentWithID("d1", "A", "a.txt", "one two three"),
		NewDocumentWithID("d2", "B", "b.txt", "one two four"),
		NewDocumentWithID("d3", "C", "c.txt", "five six"),
	}
	m, err := CompareAll(context.Background(), docs, DefaultOptions())
	if err != nil {
		t.Fatalf("CompareAll failed: %v", err)
	}
	peers, ok := m.Peers("d2")
	if !ok || len(peers) != 2 {
		t.Fatalf("expected 2 peers for d2, got %v", peers)
	}
	if _, ok := peers["d2"]; ok {
		t.Fatal("peers must not include the document itself")
	}
	if _, ok := m.Peers("missing"); ok {
		t.Fatal("expected unknown document to report !ok")
	}

	edges := m.Edges()
	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
	if edges[0].DocumentA != "d1" || edges[0].DocumentB != "d2" {
		t.Fatalf("unexpected first edge order: %+v", edges[0])
	}
}
