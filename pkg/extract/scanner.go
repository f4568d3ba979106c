// Package extract runs the pattern grammar over input text and turns
// raw regex hits into plausible, non-overlapping date matches with
// normalized components. Matching happens on the folded form of the
// input; reported spans always refer to the original bytes.
package extract

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/muwaqqit/tarikh/pkg/grammar"
	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Defaults for the scanner limits. Both exist to bound work on hostile
// input, not to tune recall.
const (
	DefaultMaxInputLength  = 1 << 16
	DefaultMatchStepBudget = 4096
)

// Options configures a Scanner.
type Options struct {
	// Languages restricts which vocabularies scan. Empty means every
	// language the keyword tables carry.
	Languages []keywords.Language

	// MaxInputLength caps how many input bytes are scanned; longer
	// inputs are cut at the last rune boundary under the cap.
	MaxInputLength int

	// MatchStepBudget caps the raw hits examined per pattern, so no
	// single sweep can starve the rest of the grammar.
	MatchStepBudget int
}

// Scanner matches date mentions. Build one per configuration and reuse
// it; Scan is safe for concurrent use.
type Scanner struct {
	tables   *keywords.Tables
	patterns []*grammar.Pattern
	maxInput int
	budget   int
}

// NewScanner wires a compiled pattern set and its keyword tables.
func NewScanner(set *grammar.Set, tables *keywords.Tables, opts Options) (*Scanner, error) {
	if set == nil || set.Len() == 0 {
		return nil, errors.New("no pattern grammar provided")
	}
	if tables == nil {
		return nil, errors.New("no keyword tables provided")
	}

	langs := opts.Languages
	if len(langs) == 0 {
		langs = tables.Languages()
	}
	patterns := set.ForLanguages(langs...)
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no patterns available for languages %v", langs)
	}

	maxInput := opts.MaxInputLength
	if maxInput <= 0 {
		maxInput = DefaultMaxInputLength
	}
	budget := opts.MatchStepBudget
	if budget <= 0 {
		budget = DefaultMatchStepBudget
	}

	return &Scanner{
		tables:   tables,
		patterns: patterns,
		maxInput: maxInput,
		budget:   budget,
	}, nil
}

// kindNeeds are the slots a match must fill for its structural family.
var kindNeeds = map[grammar.PatternKind][]int{
	grammar.KindSingle:      {types.SlotStart},
	grammar.KindPair:        {types.SlotStart, types.SlotEnd},
	grammar.KindAlternative: {types.SlotStart, types.SlotStartAlt},
	grammar.KindCompound:    {types.SlotStart, types.SlotStartAlt, types.SlotEnd, types.SlotEndAlt},
}

type candidate struct {
	p      *grammar.Pattern
	lo, hi int // folded offsets, for overlap resolution
	match  Match
}

// Scan returns the date mentions of text in reading order. Overlapping
// hits are resolved by start offset first, then pattern priority, then
// registration order, so the outcome is deterministic for a given
// grammar.
func (s *Scanner) Scan(text string) []Match {
	if s.maxInput > 0 && len(text) > s.maxInput {
		cut := s.maxInput
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	f := foldText(text)

	var cands []candidate
	for _, p := range s.patterns {
		for _, m := range p.MatchAll(f.text, s.budget) {
			if c, ok := s.vet(p, m, f); ok {
				cands = append(cands, c)
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.lo != b.lo {
			return a.lo < b.lo
		}
		if a.p.Priority != b.p.Priority {
			return a.p.Priority > b.p.Priority
		}
		return a.p.Index() < b.p.Index()
	})

	var out []Match
	lastEnd := 0
	for _, c := range cands {
		if len(out) > 0 && c.lo < lastEnd {
			continue
		}
		out = append(out, c.match)
		lastEnd = c.hi
	}
	return out
}

// vet decides whether one raw regex hit is a usable date mention. It
// checks the token boundaries, trims a trailing optional group when
// that rescues the end boundary, and normalizes every slot.
func (s *Scanner) vet(p *grammar.Pattern, m []int, f *folded) (candidate, bool) {
	if !f.boundedLeft(m[0]) {
		return candidate{}, false
	}
	for !f.boundedRight(m[1]) {
		if !trimOptionalTail(p, m, f) {
			return candidate{}, false
		}
	}

	for _, sf := range p.Required() {
		if !slotFieldFilled(p, m, sf) {
			return candidate{}, false
		}
	}

	captures := readCaptures(p, m, f)
	for _, slot := range kindNeeds[p.Kind] {
		if captures[slot] == nil {
			return candidate{}, false
		}
	}

	// Single-form worded patterns carry their own vocabulary anchor;
	// everything else is judged by what the slot captured.
	anchored := p.Language != "" && p.Kind == grammar.KindSingle

	match := Match{
		Pattern:  p.Name,
		Kind:     p.Kind,
		Language: p.Language,
		Priority: p.Priority,
		Span:     f.span(m[0], m[1]),
		Raw:      f.raw(m[0], m[1]),
	}
	for slot := range match.Slots {
		sc := captures[slot]
		if sc == nil {
			continue
		}
		d, corrections, ok := buildSlot(s.tables, p.Language, slot, sc, f)
		if !ok || !plausibleYear(d, anchored) {
			return candidate{}, false
		}
		match.Slots[slot] = d
		match.Corrections = append(match.Corrections, corrections...)
	}

	return candidate{p: p, lo: m[0], hi: m[1], match: match}, true
}

// trimOptionalTail drops the trailing optional capture group of a hit,
// typically an era letter that actually begins the next word. The cut
// must come clean: the group has to close the match, and everything
// after the preceding captures must be whitespace.
func trimOptionalTail(p *grammar.Pattern, m []int, f *folded) bool {
	layout := p.Layout()
	cut := -1
	for i := len(layout) - 1; i >= 0; i-- {
		lo, hi := m[2*(i+1)], m[2*(i+1)+1]
		if lo < 0 || hi <= lo {
			continue
		}
		if hi == m[1] && layout[i].Optional {
			cut = i
		}
		break
	}
	if cut == -1 {
		return false
	}

	newEnd := m[2*(cut+1)]
	for newEnd > m[0] {
		r, size := utf8.DecodeLastRuneInString(f.text[:newEnd])
		if !unicode.IsSpace(r) {
			break
		}
		newEnd -= size
	}
	if newEnd <= m[0] {
		return false
	}

	m[2*(cut+1)], m[2*(cut+1)+1] = -1, -1
	m[1] = newEnd
	return true
}

// slotFieldFilled reports whether any capture group feeding the slot
// field matched non-empty text.
func slotFieldFilled(p *grammar.Pattern, m []int, sf grammar.SlotField) bool {
	for i, fr := range p.Layout() {
		if fr.Slot != sf.Slot || fr.Kind != sf.Kind {
			continue
		}
		lo, hi := m[2*(i+1)], m[2*(i+1)+1]
		if lo >= 0 && hi > lo {
			return true
		}
	}
	return false
}
