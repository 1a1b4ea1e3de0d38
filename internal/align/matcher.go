package align

import "sort"

type span struct {
	aLo, aHi int
	bLo, bHi int
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int

	// run lengths ending at b[j-1], indexed by j; kept zeroed between calls
	prev, cur []int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{
		a:    a,
		b:    b,
		b2j:  b2j,
		prev: make([]int, len(b)+1),
		cur:  make([]int, len(b)+1),
	}
}

// longestMatch finds the longest run common to a[aLo:aHi] and b[bLo:bHi].
// Among equal-length runs the one starting earliest in a wins, then earliest
// in b. Size is zero when the ranges share no character.
func (m *matcher) longestMatch(s span) Block {
	best := Block{A: s.aLo, B: s.bLo}
	prev, cur := m.prev, m.cur
	var prevSet, curSet []int
	for i := s.aLo; i < s.aHi; i++ {
		for _, j := range m.b2j[m.a[i]] {
			if j < s.bLo {
				continue
			}
			if j >= s.bHi {
				break
			}
			k := prev[j] + 1
			cur[j+1] = k
			curSet = append(curSet, j+1)
			if k > best.Size {
				best = Block{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		for _, idx := range prevSet {
			prev[idx] = 0
		}
		prev, cur = cur, prev
		prevSet, curSet = curSet, prevSet[:0]
	}
	for _, idx := range prevSet {
		prev[idx] = 0
	}
	return best
}

// blocks splits the ranges around each longest match until nothing is left.
// An explicit stack keeps call depth constant on long, repetitive inputs.
func (m *matcher) blocks() []Block {
	var out []Block
	stack := []span{{aLo: 0, aHi: len(m.a), bLo: 0, bHi: len(m.b)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.aLo >= s.aHi || s.bLo >= s.bHi {
			continue
		}
		blk := m.longestMatch(s)
		if blk.Size == 0 {
			continue
		}
		out = append(out, blk)
		if s.aLo < blk.A && s.bLo < blk.B {
			stack = append(stack, span{aLo: s.aLo, aHi: blk.A, bLo: s.bLo, bHi: blk.B})
		}
		if blk.A+blk.Size < s.aHi && blk.B+blk.Size < s.bHi {
			stack = append(stack, span{aLo: blk.A + blk.Size, aHi: s.aHi, bLo: blk.B + blk.Size, bHi: s.bHi})
		}
	}
	// Blocks never cross, so ordering by A is the left-to-right order.
	sort.Slice(out, func(i, j int) bool { return out[i].A < out[j].A })
	return out
}
