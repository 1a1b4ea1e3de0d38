package risk

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	PeerWeight     = 0.6
	ExternalWeight = 0.4

	HighThreshold   = 70.0
	MediumThreshold = 40.0
)

type Tier string

const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

var (
	ErrInvalidScore    = errors.New("invalid score")
	ErrUnknownDocument = errors.New("unknown document")
)

// InvalidScoreError reports an external score outside [0,100].
type InvalidScoreError struct {
	DocumentID string
	Score      float64
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("external score %v for %q outside [0,100]", e.Score, e.DocumentID)
}

func (e *InvalidScoreError) Is(target error) bool {
	return target == ErrInvalidScore
}

// PeerSource is the read side of a similarity matrix.
type PeerSource interface {
	Peers(id string) (map[string]float64, bool)
}

type Report struct {
	DocumentID    string             `json:"document_id"`
	PeerScores    map[string]float64 `json:"peer_scores"`
	MaxPeer       float64            `json:"max_peer"`
	ExternalScore float64            `json:"external_score"`
	OverallScore  float64            `json:"overall_score"`
	Tier          Tier               `json:"tier"`
}

func Classify(score float64) Tier {
	switch {
	case score >= HighThreshold:
		return TierHigh
	case score >= MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

func Overall(maxPeer, externalScore float64) float64 {
	return clamp(maxPeer*PeerWeight+externalScore*ExternalWeight, 0, 100)
}

func Score(documentID string, m PeerSource, externalScore float64) (Report, error) {
	if math.IsNaN(externalScore) || externalScore < 0 || externalScore > 100 {
		return Report{}, &InvalidScoreError{DocumentID: documentID, Score: externalScore}
	}
	peers, ok := m.Peers(documentID)
	if !ok {
		return Report{}, fmt.Errorf("score %q: %w", documentID, ErrUnknownDocument)
	}

	maxPeer := 0.0
	for _, r := range peers {
		maxPeer = max(maxPeer, r)
	}
	overall := Overall(maxPeer, externalScore)
	return Report{
		DocumentID:    documentID,
		PeerScores:    peers,
		MaxPeer:       maxPeer,
		ExternalScore: externalScore,
		OverallScore:  overall,
		Tier:          Classify(overall),
	}, nil
}

// ScoreAll scores ids in order. A document without an entry in external is
// scored as if the external check were disabled.
func ScoreAll(ids []string, m PeerSource, external map[string]float64) ([]Report, error) {
	out := make([]Report, 0, len(ids))
	for _, id := range ids {
		r, err := Score(id, m, external[id])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// RankedPeers returns the peer IDs of r ordered by descending ratio, ties by ID.
func (r Report) RankedPeers() []string {
	ids := make([]string, 0, len(r.PeerScores))
	for id := range r.PeerScores {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		ra, rb := r.PeerScores[a], r.PeerScores[b]
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return ids
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
