package grammar

import (
	"fmt"
	"regexp"

	"github.com/muwaqqit/tarikh/pkg/keywords"
)

// PatternKind is the structural family of a pattern. It tells the
// resolver how to relate the entity slots a match fills.
type PatternKind string

const (
	KindSingle      PatternKind = "single"
	KindPair        PatternKind = "pair"
	KindAlternative PatternKind = "alternative"
	KindCompound    PatternKind = "compound"
)

// SlotField addresses one date field in one entity slot. Several
// capture groups may feed the same slot field; the first non-empty
// group wins when a match is read.
type SlotField struct {
	Slot int
	Kind FieldKind
}

// Pattern is one compiled recognition rule. Patterns come out of Build
// and are immutable afterwards.
type Pattern struct {
	Name     string
	Kind     PatternKind
	Language keywords.Language // empty for script-neutral numeric forms
	Priority int
	Examples []string

	expr     string
	re       *regexp.Regexp
	layout   []FieldRef
	required []SlotField
	index    int
}

func newPattern(name string, kind PatternKind, lang keywords.Language, priority int, frag fragment, examples ...string) *Pattern {
	return &Pattern{
		Name:     name,
		Kind:     kind,
		Language: lang,
		Priority: priority,
		Examples: examples,
		expr:     frag.expr,
		layout:   frag.fields,
	}
}

// Expr returns the regular expression source.
func (p *Pattern) Expr() string { return p.expr }

// Layout maps capture groups, in group order, to slot fields.
func (p *Pattern) Layout() []FieldRef { return p.layout }

// Required lists the slot fields a match must fill to count as a
// candidate.
func (p *Pattern) Required() []SlotField { return p.required }

// Index is the registration order, the deterministic tiebreak between
// candidates of equal priority.
func (p *Pattern) Index() int { return p.index }

// MatchAll returns up to limit matches as submatch index pairs, in the
// form FindAllStringSubmatchIndex produces.
func (p *Pattern) MatchAll(text string, limit int) [][]int {
	return p.re.FindAllStringSubmatchIndex(text, limit)
}

// compile builds the regular expression and derives the required slot
// fields from the non-optional layout entries.
func (p *Pattern) compile() error {
	re, err := regexp.Compile(p.expr)
	if err != nil {
		return fmt.Errorf("compiling %s: %v", p.Name, err)
	}
	if n := re.NumSubexp(); n != len(p.layout) {
		return fmt.Errorf("%s has %d capture groups for %d field references", p.Name, n, len(p.layout))
	}
	p.re = re

	seen := map[SlotField]bool{}
	for _, f := range p.layout {
		if f.Optional {
			continue
		}
		sf := SlotField{Slot: f.Slot, Kind: f.Kind}
		if !seen[sf] {
			seen[sf] = true
			p.required = append(p.required, sf)
		}
	}
	return nil
}

// Set is a compiled pattern grammar. A Set is built once, validated as
// a whole, and read-only from then on.
type Set struct {
	patterns []*Pattern
	byName   map[string]*Pattern
}

// Patterns returns every pattern in registration order.
func (s *Set) Patterns() []*Pattern { return s.patterns }

// Len reports the number of patterns.
func (s *Set) Len() int { return len(s.patterns) }

// Pattern looks a pattern up by name.
func (s *Set) Pattern(name string) (*Pattern, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// ForLanguages returns the patterns for the given languages plus the
// script-neutral ones, in registration order.
func (s *Set) ForLanguages(langs ...keywords.Language) []*Pattern {
	want := map[keywords.Language]bool{}
	for _, l := range langs {
		want[l] = true
	}
	var out []*Pattern
	for _, p := range s.patterns {
		if p.Language == "" || want[p.Language] {
			out = append(out, p)
		}
	}
	return out
}
