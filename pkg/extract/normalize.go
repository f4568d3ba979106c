package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// folded is the recognition form of an input plus the byte map back to
// the original text. Folding runs per NFKD segment, so every folded
// byte knows which original segment produced it and match offsets can
// be reported against the text the caller handed in.
type folded struct {
	src   string
	text  string
	start []int // start[i]: original offset of the segment behind folded byte i
	end   []int // end[i]: original offset just past that segment
}

func foldText(src string) *folded {
	f := &folded{src: src}
	var b strings.Builder
	b.Grow(len(src))
	starts := make([]int, 0, len(src))
	ends := make([]int, 0, len(src))

	var it norm.Iter
	it.InitString(norm.NFKD, src)
	segStart := 0
	for !it.Done() {
		seg := it.Next()
		segEnd := it.Pos()
		n := 0
		for _, r := range string(seg) {
			for _, fr := range keywords.FoldRune(r) {
				b.WriteRune(fr)
				n += utf8.RuneLen(fr)
			}
		}
		for i := 0; i < n; i++ {
			starts = append(starts, segStart)
			ends = append(ends, segEnd)
		}
		segStart = segEnd
	}

	f.text = b.String()
	f.start = starts
	f.end = ends
	return f
}

// span maps a half-open folded range back to original byte offsets.
func (f *folded) span(lo, hi int) types.Span {
	if lo >= len(f.start) {
		return types.Span{Start: len(f.src), End: len(f.src)}
	}
	if hi <= lo {
		return types.Span{Start: f.start[lo], End: f.start[lo]}
	}
	if hi > len(f.end) {
		hi = len(f.end)
	}
	return types.Span{Start: f.start[lo], End: f.end[hi-1]}
}

// raw returns the original text behind a folded range.
func (f *folded) raw(lo, hi int) string {
	sp := f.span(lo, hi)
	return f.src[sp.Start:sp.End]
}

// boundedLeft reports whether a match starting at lo sits clear of the
// preceding token. A letter or digit right before the match means the
// match is a fragment of something longer.
func (f *folded) boundedLeft(lo int) bool {
	if lo <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(f.text[:lo])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// boundedRight is the mirror check at the match end.
func (f *folded) boundedRight(hi int) bool {
	if hi >= len(f.text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(f.text[hi:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
