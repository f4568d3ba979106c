// Package keywords holds the per-language, per-calendar vocabularies
// the grammar and the normalizer are built from: month names, era
// markers, weekday names, ordinal words, and connector words. Tables
// are loaded once at startup from embedded YAML packs, optionally
// extended from a directory, and are read-only afterwards.
package keywords

import (
	"sort"

	"github.com/muwaqqit/tarikh/pkg/types"
)

// Language selects a vocabulary.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguagePersian Language = "fa"
	LanguageEnglish Language = "en"
)

// Valid reports whether the language code is supported.
func (l Language) Valid() bool {
	return l == LanguageArabic || l == LanguagePersian || l == LanguageEnglish
}

// AllLanguages lists the supported languages in canonical order.
func AllLanguages() []Language {
	return []Language{LanguageArabic, LanguagePersian, LanguageEnglish}
}

// Category names a vocabulary table.
type Category string

const (
	CategoryMonth     Category = "month"
	CategoryEra       Category = "era"
	CategoryWeekday   Category = "weekday"
	CategoryOrdinal   Category = "ordinal"
	CategoryConnector Category = "connector"
)

// ConnectorKind subdivides the connector category.
type ConnectorKind string

const (
	ConnectorRangeStart  ConnectorKind = "range_start"
	ConnectorRangeEnd    ConnectorKind = "range_end"
	ConnectorAlternative ConnectorKind = "alternative"
	ConnectorYearWord    ConnectorKind = "year_word"
	ConnectorDayWord     ConnectorKind = "day_word"
	ConnectorCenturyWord ConnectorKind = "century_word"
)

var connectorKinds = []ConnectorKind{
	ConnectorRangeStart, ConnectorRangeEnd, ConnectorAlternative,
	ConnectorYearWord, ConnectorDayWord, ConnectorCenturyWord,
}

// Key is the canonical value a recognized token resolves to.
type Key struct {
	Category Category

	// Canonical English label for months and weekdays.
	Canonical string

	// Value carries the month number, ordinal value, or weekday index.
	Value int

	// Calendar is the owning calendar for month names and the implied
	// calendar for era markers.
	Calendar types.Calendar

	Era       types.Era
	Weekday   types.Weekday
	Connector ConnectorKind
}

// Tables is the assembled, read-only vocabulary set.
type Tables struct {
	langs       map[Language]*languageTable
	monthLabels map[types.Calendar]*[12]string
}

type languageTable struct {
	lookup     map[Category]map[string]Key
	months     map[types.Calendar][]string
	eras       map[types.Calendar][]string
	erasAll    []string
	weekdays   []string
	ordinals   []ordinalVariant
	connectors map[ConnectorKind][]string
}

type ordinalVariant struct {
	token string
	value int
}

func newLanguageTable() *languageTable {
	return &languageTable{
		lookup: map[Category]map[string]Key{
			CategoryMonth:     {},
			CategoryEra:       {},
			CategoryWeekday:   {},
			CategoryOrdinal:   {},
			CategoryConnector: {},
		},
		months:     map[types.Calendar][]string{},
		eras:       map[types.Calendar][]string{},
		connectors: map[ConnectorKind][]string{},
	}
}

// Lookup resolves a raw token in one category and language. The token
// is folded before lookup, so diacritics, zero-width joiners, digit
// glyph variants, and case never cause a miss. A miss is a normal
// outcome, not an error.
func (t *Tables) Lookup(token string, cat Category, lang Language) (Key, bool) {
	lt, ok := t.langs[lang]
	if !ok {
		return Key{}, false
	}
	m, ok := lt.lookup[cat]
	if !ok {
		return Key{}, false
	}
	k, ok := m[FoldKey(token)]
	return k, ok
}

// Has reports whether a vocabulary exists for the language.
func (t *Tables) Has(lang Language) bool {
	_, ok := t.langs[lang]
	return ok
}

// Languages lists the loaded languages in canonical order.
func (t *Tables) Languages() []Language {
	var out []Language
	for _, l := range AllLanguages() {
		if t.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// MonthVariants returns the folded month-name variants for a calendar
// in a language, longest first. Empty when the pack declares none.
func (t *Tables) MonthVariants(lang Language, cal types.Calendar) []string {
	if lt, ok := t.langs[lang]; ok {
		return lt.months[cal]
	}
	return nil
}

// EraVariants returns the folded era-marker variants for a calendar in
// a language, longest first. CalendarUnknown returns markers for every
// calendar.
func (t *Tables) EraVariants(lang Language, cal types.Calendar) []string {
	lt, ok := t.langs[lang]
	if !ok {
		return nil
	}
	if cal == types.CalendarUnknown {
		return lt.erasAll
	}
	return lt.eras[cal]
}

// WeekdayVariants returns the folded weekday-name variants, longest
// first.
func (t *Tables) WeekdayVariants(lang Language) []string {
	if lt, ok := t.langs[lang]; ok {
		return lt.weekdays
	}
	return nil
}

// OrdinalVariants returns the folded ordinal-word variants with value
// at most max, longest first.
func (t *Tables) OrdinalVariants(lang Language, max int) []string {
	lt, ok := t.langs[lang]
	if !ok {
		return nil
	}
	var out []string
	for _, v := range lt.ordinals {
		if v.value <= max {
			out = append(out, v.token)
		}
	}
	return out
}

// Connectors returns the folded connector variants of one kind,
// longest first.
func (t *Tables) Connectors(lang Language, kind ConnectorKind) []string {
	if lt, ok := t.langs[lang]; ok {
		return lt.connectors[kind]
	}
	return nil
}

// MonthLabel returns the canonical English name of a month in a
// calendar, or empty when unknown.
func (t *Tables) MonthLabel(cal types.Calendar, month int) string {
	labels, ok := t.monthLabels[cal]
	if !ok || month < 1 || month > 12 {
		return ""
	}
	return labels[month-1]
}

// WeekdayLabel returns the canonical English weekday name.
func WeekdayLabel(w types.Weekday) string {
	switch w {
	case types.Sunday:
		return "Sunday"
	case types.Monday:
		return "Monday"
	case types.Tuesday:
		return "Tuesday"
	case types.Wednesday:
		return "Wednesday"
	case types.Thursday:
		return "Thursday"
	case types.Friday:
		return "Friday"
	case types.Saturday:
		return "Saturday"
	default:
		return ""
	}
}

// sortVariants orders variant tokens longest first so that regular
// expression alternations prefer the most specific form; ties break
// lexicographically for deterministic builds.
func sortVariants(vs []string) {
	sort.Slice(vs, func(i, j int) bool {
		if len(vs[i]) != len(vs[j]) {
			return len(vs[i]) > len(vs[j])
		}
		return vs[i] < vs[j]
	})
}

func sortOrdinals(vs []ordinalVariant) {
	sort.Slice(vs, func(i, j int) bool {
		if len(vs[i].token) != len(vs[j].token) {
			return len(vs[i].token) > len(vs[j].token)
		}
		return vs[i].token < vs[j].token
	})
}
