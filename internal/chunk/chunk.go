package chunk

import "strings"

type Segment struct {
	Index      int
	StartToken int
	EndToken   int
	Text       string
}

func SlidingWindow(text string, segmentTokens, overlapTokens int) []Segment {
	if segmentTokens <= 0 {
		return nil
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= segmentTokens {
		overlapTokens = segmentTokens - 1
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := segmentTokens - overlapTokens
	segments := make([]Segment, 0, (len(tokens)/step)+1)
	for start := 0; start < len(tokens); start += step {
		end := min(start+segmentTokens, len(tokens))
		segments = append(segments, Segment{
			Index:      len(segments),
			StartToken: start,
			EndToken:   end,
			Text:       strings.Join(tokens[start:end], " "),
		})
		if end == len(tokens) {
			break
		}
	}

	return segments
}

// Sentences splits text on sentence terminators and returns up to limit
// trimmed, non-empty sentences with inner whitespace collapsed. limit <= 0
// means no limit.
func Sentences(text string, limit int) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Queries picks up to limit sentences longer than minChars and caps each at
// maxWords words.
func Queries(text string, limit, minChars, maxWords int) []string {
	var out []string
	for _, s := range Sentences(text, 0) {
		if len([]rune(s)) <= minChars {
			continue
		}
		if maxWords > 0 {
			if windows := SlidingWindow(s, maxWords, 0); len(windows) > 0 {
				s = windows[0].Text
			}
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
