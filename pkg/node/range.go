package node

import "fmt"

// Range selects either every node or an inclusive span of node indices.
type Range struct {
	span       bool
	start, end int
}

func All() Range { return Range{} }

func Span(start, end int) Range {
	if start > end {
		panic(fmt.Sprintf("node: invalid span [%d, %d]", start, end))
	}
	return Range{span: true, start: start, end: end}
}

func (r Range) IsAll() bool { return !r.span }

// Bounds resolves the range against a container of size n, panicking when a
// span does not fit.
func (r Range) Bounds(n int) (int, int) {
	if !r.span {
		return 0, n - 1
	}
	if r.start < 0 || r.end >= n {
		panic(fmt.Sprintf("node: span [%d, %d] outside [0, %d)", r.start, r.end, n))
	}
	return r.start, r.end
}

func (r Range) String() string {
	if !r.span {
		return "all"
	}
	return fmt.Sprintf("[%d, %d]", r.start, r.end)
}
