package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	RunID         string  `csv:"run_id"`
	DocumentID    string  `csv:"document_id"`
	Name          string  `csv:"student"`
	Filename      string  `csv:"file"`
	MaxPeer       float64 `csv:"max_peer"`
	ExternalScore float64 `csv:"online_score"`
	OverallScore  float64 `csv:"overall_score"`
	Tier          string  `csv:"risk"`
}

func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func WriteCSV(w io.Writer, s Summary) error {
	rows := make([]*csvRow, 0, len(s.Documents))
	for _, d := range s.Documents {
		rows = append(rows, &csvRow{
			RunID:         s.RunID,
			DocumentID:    d.ID,
			Name:          d.Name,
			Filename:      d.Filename,
			MaxPeer:       round1(d.MaxPeer),
			ExternalScore: round1(d.ExternalScore),
			OverallScore:  round1(d.OverallScore),
			Tier:          string(d.Tier),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
