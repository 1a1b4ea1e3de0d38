package compare

import (
	"slices"

	"simcheck/internal/align"
)

// PairKey identifies an unordered document pair. A is always the smaller ID.
type PairKey struct {
	A string
	B string
}

func NewPairKey(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{A: x, B: y}
}

type Edge struct {
	DocumentA string          `json:"document_a"`
	DocumentB string          `json:"document_b"`
	Ratio     float64         `json:"ratio"`
	Segments  []align.Segment `json:"segments"`
}

// reversed returns the same edge read from DocumentB's side.
func (e Edge) reversed() Edge {
	segs := make([]align.Segment, len(e.Segments))
	for i, s := range e.Segments {
		segs[i] = align.Segment{
			StartInA: s.StartInB,
			StartInB: s.StartInA,
			Length:   s.Length,
			Text:     s.Text,
		}
	}
	return Edge{
		DocumentA: e.DocumentB,
		DocumentB: e.DocumentA,
		Ratio:     e.Ratio,
		Segments:  segs,
	}
}

// Matrix holds one edge per unordered pair of a batch. It is read-only after
// CompareAll returns it.
type Matrix struct {
	ids   []string
	edges map[PairKey]Edge
}

func newMatrix(ids []string, edges []Edge) *Matrix {
	m := &Matrix{
		ids:   slices.Clone(ids),
		edges: make(map[PairKey]Edge, len(edges)),
	}
	for _, e := range edges {
		m.edges[NewPairKey(e.DocumentA, e.DocumentB)] = e
	}
	return m
}

func (m *Matrix) Len() int {
	return len(m.edges)
}

// DocumentIDs returns the batch's document IDs in input order.
func (m *Matrix) DocumentIDs() []string {
	return slices.Clone(m.ids)
}

func (m *Matrix) has(id string) bool {
	return slices.Contains(m.ids, id)
}

// Edge returns the edge for x and y oriented so that DocumentA is x.
func (m *Matrix) Edge(x, y string) (Edge, bool) {
	e, ok := m.edges[NewPairKey(x, y)]
	if !ok {
		return Edge{}, false
	}
	if e.DocumentA != x {
		return e.reversed(), true
	}
	return e, true
}

func (m *Matrix) Ratio(x, y string) (float64, bool) {
	if x == y {
		return 100, m.has(x)
	}
	e, ok := m.edges[NewPairKey(x, y)]
	return e.Ratio, ok
}

// Peers maps every other document in the batch to its ratio against id.
func (m *Matrix) Peers(id string) (map[string]float64, bool) {
	if !m.has(id) {
		return nil, false
	}
	out := make(map[string]float64, len(m.ids)-1)
	for _, other := range m.ids {
		if other == id {
			continue
		}
		if r, ok := m.Ratio(id, other); ok {
			out[other] = r
		}
	}
	return out, true
}

// Edges returns all edges ordered by the input position of their documents.
func (m *Matrix) Edges() []Edge {
	out := make([]Edge, 0, len(m.edges))
	for i, x := range m.ids {
		for _, y := range m.ids[i+1:] {
			if e, ok := m.Edge(x, y); ok {
				out = append(out, e)
			}
		}
	}
	return out
}
