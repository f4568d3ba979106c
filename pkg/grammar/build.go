package grammar

import (
	"fmt"
	"strings"

	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Priority bands. Among candidates starting at the same offset the
// higher band wins, so composite forms beat the fragments they
// contain.
const (
	priorityCompound     = 100
	priorityParenAlt     = 82
	priorityAlternative  = 80
	prioritySlashAlt     = 78
	priorityDayRange     = 72
	priorityPair         = 70
	priorityWeekdayDate  = 60
	priorityDayMonthYear = 50
	priorityISO          = 45
	priorityNumericEra   = 44
	priorityYearPair     = 41
	priorityNumeric      = 40
	priorityMonthYear    = 35
	priorityYearWord     = 30
	priorityYearEra      = 29
	priorityCentury      = 25
)

// Build assembles and compiles the recognition grammar for the given
// languages from the keyword tables. An empty language list means
// every loaded language. Construction and validation failures are
// collected and reported in one error; a partially built set is never
// returned.
func Build(tables *keywords.Tables, langs []keywords.Language) (*Set, error) {
	if tables == nil {
		return nil, fmt.Errorf("building pattern grammar: nil keyword tables")
	}
	if len(langs) == 0 {
		langs = tables.Languages()
	}

	var buildErrors []string
	var patterns []*Pattern
	for _, lang := range langs {
		if !tables.Has(lang) {
			buildErrors = append(buildErrors, fmt.Sprintf("language %s: no vocabulary loaded", lang))
			continue
		}
		patterns = append(patterns, languagePatterns(newAtoms(tables, lang))...)
	}
	patterns = append(patterns, neutralPatterns()...)

	s := &Set{patterns: patterns, byName: make(map[string]*Pattern, len(patterns))}
	for i, p := range s.patterns {
		p.index = i
		if _, dup := s.byName[p.Name]; dup {
			buildErrors = append(buildErrors, fmt.Sprintf("duplicate pattern name %s", p.Name))
			continue
		}
		s.byName[p.Name] = p
		if err := p.compile(); err != nil {
			buildErrors = append(buildErrors, err.Error())
		}
	}

	buildErrors = append(buildErrors, s.check()...)

	if len(buildErrors) > 0 {
		return nil, fmt.Errorf("errors building pattern grammar: %s", strings.Join(buildErrors, "; "))
	}
	return s, nil
}

// languagePatterns instantiates every shape for one language,
// composite forms first so registration order tracks priority.
func languagePatterns(a *atoms) []*Pattern {
	shapes := []*Pattern{
		shapeCompound(a),
		shapeParenAlternative(a),
		shapeAlternative(a),
		shapeSlashAlternative(a),
		shapeDayRange(a),
		shapePair(a),
		shapeWeekdayDate(a),
		shapeDayMonthYear(a),
		shapeMonthDayYear(a),
		shapeMonthYear(a),
		shapeNumericEra(a),
		shapeYearWord(a),
		shapeYearEra(a),
		shapeCentury(a),
	}
	var out []*Pattern
	for _, p := range shapes {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// neutralPatterns are the purely numeric forms. Digit folding makes
// them script-neutral, so they stay active whatever languages are
// selected.
func neutralPatterns() []*Pattern {
	iso := newPattern(
		"iso-date", KindSingle, "", priorityISO,
		isoCore(),
		"2023-07-19",
	)
	numeric := newPattern(
		"numeric-date", KindSingle, "", priorityNumeric,
		numericCore(),
		"19/7/2023", "19.7.2023",
	)
	yearPair := newPattern(
		"year-pair", KindPair, "", priorityYearPair,
		seq(
			atSlot(types.SlotStart, capture(FieldYear, `[0-9]{4}`)),
			lit(`\s*[-/–—]\s*`),
			atSlot(types.SlotEnd, capture(FieldYear, `[0-9]{4}`)),
		),
		"2023/2024",
	)
	return []*Pattern{iso, numeric, yearPair}
}
