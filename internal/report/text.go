package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"simcheck/internal/risk"
)

type TextOptions struct {
	Color bool
	// SegmentDisplayMin is the peer ratio above which matching segments are shown.
	SegmentDisplayMin float64
	MaxSegments       int
	MaxSegmentChars   int
}

func DefaultTextOptions() TextOptions {
	return TextOptions{
		Color:             true,
		SegmentDisplayMin: 30,
		MaxSegments:       2,
		MaxSegmentChars:   100,
	}
}

var tierColors = map[risk.Tier]lipgloss.Color{
	risk.TierHigh:   lipgloss.Color("#e5484d"),
	risk.TierMedium: lipgloss.Color("#f76b15"),
	risk.TierLow:    lipgloss.Color("#30a46c"),
}

func TierLabel(t risk.Tier) string {
	return string(t) + " Risk"
}

type painter struct {
	color bool
}

func (p painter) tier(t risk.Tier, s string) string {
	if !p.color {
		return s
	}
	return lipgloss.NewStyle().Foreground(tierColors[t]).Bold(true).Render(s)
}

func (p painter) heading(s string) string {
	if !p.color {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Underline(true).Render(s)
}

func WriteText(w io.Writer, s Summary, opts TextOptions) error {
	if opts.MaxSegments <= 0 {
		opts.MaxSegments = 2
	}
	if opts.MaxSegmentChars <= 0 {
		opts.MaxSegmentChars = 100
	}
	p := painter{color: opts.Color}
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", p.heading(fmt.Sprintf("Analysis Results (run %s, %d documents)", ShortRunID(s.RunID), len(s.Documents))))
	for _, d := range s.Documents {
		fmt.Fprintf(&b, "\n%s (%s) - Overall Risk: %s\n", d.Name, d.Filename, p.tier(d.Tier, TierLabel(d.Tier)))
		fmt.Fprintf(&b, "  Overall Plagiarism: %.1f%%  Max Peer Similarity: %.1f%%  Online Match: %.1f%%\n",
			d.OverallScore, d.MaxPeer, d.ExternalScore)

		b.WriteString("  Student-to-Student Comparison:\n")
		for _, peer := range d.Peers {
			peerFile := ""
			if other, ok := s.Document(peer.ID); ok {
				peerFile = other.Filename
			}
			fmt.Fprintf(&b, "    %s (%s)  %s\n", peer.Name, peerFile, p.tier(peer.Tier, fmt.Sprintf("%.1f%%", peer.Ratio)))
			if peer.Ratio <= opts.SegmentDisplayMin {
				continue
			}
			segs := s.Segments(d.ID, peer.ID)
			if len(segs) == 0 {
				continue
			}
			fmt.Fprintf(&b, "      Matching segments: %d found\n", len(segs))
			for _, seg := range segs[:min(len(segs), opts.MaxSegments)] {
				fmt.Fprintf(&b, "        '%s...'\n", truncate(seg.Text, opts.MaxSegmentChars))
			}
		}

		if len(d.OnlineMatches) > 0 && s.Provider != "disabled" {
			fmt.Fprintf(&b, "  Online Check (estimated match %.1f%%):\n", d.ExternalScore)
			for i, m := range d.OnlineMatches[:min(len(d.OnlineMatches), 3)] {
				source := m.Source
				if source == "" {
					source = "no source found"
				}
				fmt.Fprintf(&b, "    Match %d: %s... (%s)\n", i+1, truncate(m.Query, 150), source)
			}
		}
		fmt.Fprintf(&b, "  Risk Level: %s\n", p.tier(d.Tier, TierLabel(d.Tier)))
	}

	rows := make([][]string, 0, len(s.Documents))
	for _, d := range s.Documents {
		rows = append(rows, []string{d.Name, d.Filename, fmt.Sprintf("%.1f%%", d.OverallScore), TierLabel(d.Tier)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Student", "File", "Overall Score", "Risk").
		Rows(rows...)
	fmt.Fprintf(&b, "\n%s\n%s\n", p.heading("Summary Overview"), t.Render())

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
