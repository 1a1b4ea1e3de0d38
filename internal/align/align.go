package align

const DefaultThreshold = 20

// Block is a run of identical characters found in both texts. Offsets and
// sizes are in runes.
type Block struct {
	A    int
	B    int
	Size int
}

// Segment is a matching block long enough to report, materialized from the
// first text.
type Segment struct {
	StartInA int    `json:"start_in_a"`
	StartInB int    `json:"start_in_b"`
	Length   int    `json:"length"`
	Text     string `json:"text"`
}

type Result struct {
	Ratio    float64   `json:"ratio"`
	Segments []Segment `json:"segments"`
}

type Options struct {
	// Threshold is the minimum block length, exclusive, for a block to be
	// reported as a segment. Negative values fall back to DefaultThreshold.
	Threshold int
}

func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

func Align(a, b string) Result {
	return AlignWithOptions(a, b, DefaultOptions())
}

func AlignWithOptions(a, b string, opts Options) Result {
	threshold := opts.Threshold
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	ra, rb := []rune(a), []rune(b)
	blocks := matchingBlocks(ra, rb, a > b)

	segments := make([]Segment, 0)
	matched := 0
	for _, blk := range blocks {
		matched += blk.Size
		if blk.Size > threshold {
			segments = append(segments, Segment{
				StartInA: blk.A,
				StartInB: blk.B,
				Length:   blk.Size,
				Text:     string(ra[blk.A : blk.A+blk.Size]),
			})
		}
	}
	return Result{
		Ratio:    ratio(matched, len(ra)+len(rb)),
		Segments: segments,
	}
}

// Ratio is Align(a, b).Ratio without materializing segments.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	matched := 0
	for _, blk := range matchingBlocks(ra, rb, a > b) {
		matched += blk.Size
	}
	return ratio(matched, len(ra)+len(rb))
}

// MatchingBlocks returns every matched block between a and b in
// left-to-right order.
func MatchingBlocks(a, b string) []Block {
	return matchingBlocks([]rune(a), []rune(b), a > b)
}

func ratio(matched, total int) float64 {
	if total == 0 {
		return 100
	}
	r := 200 * float64(matched) / float64(total)
	if r > 100 {
		return 100
	}
	return r
}

// matchingBlocks aligns a against b. When swap is set the work is done on
// (b, a) and the blocks mapped back, so both argument orders produce the same
// alignment.
func matchingBlocks(a, b []rune, swap bool) []Block {
	if !swap {
		return newMatcher(a, b).blocks()
	}
	blocks := newMatcher(b, a).blocks()
	for i := range blocks {
		blocks[i].A, blocks[i].B = blocks[i].B, blocks[i].A
	}
	return blocks
}
