package report

import (
	"time"

	"simcheck/internal/align"
	"simcheck/internal/batch"
	"simcheck/internal/external"
	"simcheck/internal/risk"
)

type Summary struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	DurationMs int64             `json:"duration_ms"`
	Provider   string            `json:"provider"`
	Threshold  int               `json:"threshold"`
	Documents  []DocumentSummary `json:"documents"`
	Pairs      []PairSummary     `json:"pairs"`
}

type DocumentSummary struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Filename      string           `json:"filename"`
	OverallScore  float64          `json:"overall_score"`
	MaxPeer       float64          `json:"max_peer"`
	ExternalScore float64          `json:"external_score"`
	Tier          risk.Tier        `json:"tier"`
	Peers         []PeerSummary    `json:"peers"`
	OnlineMatches []external.Match `json:"online_matches"`
}

type PeerSummary struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Ratio float64   `json:"ratio"`
	Tier  risk.Tier `json:"tier"`
}

type PairSummary struct {
	DocumentA string          `json:"document_a"`
	DocumentB string          `json:"document_b"`
	Ratio     float64         `json:"ratio"`
	Segments  []align.Segment `json:"segments"`
}

func Build(a *batch.Analysis) Summary {
	names := make(map[string]string, len(a.Documents))
	for _, d := range a.Documents {
		names[d.ID] = d.DisplayName
	}

	s := Summary{
		RunID:      a.RunID,
		StartedAt:  a.StartedAt,
		DurationMs: a.Duration.Milliseconds(),
		Provider:   a.Provider,
		Threshold:  a.Threshold,
		Documents:  make([]DocumentSummary, 0, len(a.Reports)),
		Pairs:      make([]PairSummary, 0, a.Matrix.Len()),
	}
	for _, r := range a.Reports {
		doc, _ := a.Document(r.DocumentID)
		ds := DocumentSummary{
			ID:            r.DocumentID,
			OverallScore:  r.OverallScore,
			MaxPeer:       r.MaxPeer,
			ExternalScore: r.ExternalScore,
			Tier:          r.Tier,
			Peers:         make([]PeerSummary, 0, len(r.PeerScores)),
			OnlineMatches: a.External[r.DocumentID].Matches,
		}
		if doc != nil {
			ds.Name = doc.DisplayName
			ds.Filename = doc.Filename
		}
		for _, id := range r.RankedPeers() {
			ratio := r.PeerScores[id]
			ds.Peers = append(ds.Peers, PeerSummary{
				ID:    id,
				Name:  names[id],
				Ratio: ratio,
				Tier:  risk.Classify(ratio),
			})
		}
		if ds.OnlineMatches == nil {
			ds.OnlineMatches = []external.Match{}
		}
		s.Documents = append(s.Documents, ds)
	}
	for _, e := range a.Matrix.Edges() {
		s.Pairs = append(s.Pairs, PairSummary{
			DocumentA: e.DocumentA,
			DocumentB: e.DocumentB,
			Ratio:     e.Ratio,
			Segments:  e.Segments,
		})
	}
	return s
}

// ShortRunID is the display form of a run ID.
func ShortRunID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func (s Summary) Document(id string) (DocumentSummary, bool) {
	for _, d := range s.Documents {
		if d.ID == id {
			return d, true
		}
	}
	return DocumentSummary{}, false
}

// Segments returns the segments for a pair, oriented so that offsets and text
// refer to x.
func (s Summary) Segments(x, y string) []align.Segment {
	for _, p := range s.Pairs {
		switch {
		case p.DocumentA == x && p.DocumentB == y:
			return p.Segments
		case p.DocumentA == y && p.DocumentB == x:
			out := make([]align.Segment, len(p.Segments))
			for i, seg := range p.Segments {
				out[i] = align.Segment{StartInA: seg.StartInB, StartInB: seg.StartInA, Length: seg.Length, Text: seg.Text}
			}
			return out
		}
	}
	return nil
}
