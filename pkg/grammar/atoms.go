package grammar

import (
	"regexp"
	"strings"

	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Separator expressions for folded text. Folding rewrites joiners and
// non-breaking spaces to plain spaces, so whitespace plus the Arabic
// and Latin punctuation found between date parts covers the rest.
const (
	wordSep  = `(?:\s*[,،.]\s*|\s+)`
	tightSep = `\s*`
	numSep   = `\s*[-/.]\s*`
	dashSep  = `\s*[-–—]\s*`
)

// ofWords are the genitive linkers between day and month. The Arabic
// one doubles as the range-start connector, so these live with the
// grammar rather than the keyword packs, which reject a token mapped
// to two connector kinds.
var ofWords = map[keywords.Language]string{
	keywords.LanguageArabic:  "من",
	keywords.LanguageEnglish: "of",
}

// alternation quotes folded variants into one alternation body. The
// keyword tables hand variants over longest first, so the alternation
// prefers the most specific surface form. Internal spaces accept any
// whitespace run.
func alternation(variants []string) string {
	if len(variants) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(variants))
	for _, v := range variants {
		q := regexp.QuoteMeta(v)
		quoted = append(quoted, strings.ReplaceAll(q, " ", `\s+`))
	}
	return strings.Join(quoted, "|")
}

// wordLit wraps an alternation body as an uncaptured unit.
func wordLit(alternationExpr string) fragment {
	if alternationExpr == "" {
		return fragment{}
	}
	return lit("(?:" + alternationExpr + ")")
}

// digitDay is the numeric day form with the ordinal suffixes a
// language attaches to digits.
func digitDay(lang keywords.Language) string {
	switch lang {
	case keywords.LanguageEnglish:
		return `[0-9]{1,2}(?:st|nd|rd|th)?`
	case keywords.LanguagePersian:
		return `[0-9]{1,2}(?:\s?ام)?`
	default:
		return `[0-9]{1,2}`
	}
}

// atoms carries the vocabulary-derived fragments for one language so
// the shapes do not rebuild alternations per pattern. All captures are
// bound to the start slot; composite shapes rebind with atSlot.
type atoms struct {
	lang keywords.Language

	months   map[types.Calendar]fragment
	monthAny fragment
	eraAny   fragment
	weekday  fragment
	day      fragment
	year     fragment
	century  fragment

	yearWord    fragment
	dayWord     fragment
	centuryWord fragment
	ofWord      fragment
	rangeStart  fragment
	rangeEnd    fragment
	altWord     fragment

	sampleMonth   map[types.Calendar]string
	sampleEra     map[types.Calendar]string
	sampleWeekday string

	sampleRangeStart  string
	sampleRangeEnd    string
	sampleAlt         string
	sampleYearWord    string
	sampleCenturyWord string
}

func newAtoms(t *keywords.Tables, lang keywords.Language) *atoms {
	a := &atoms{
		lang:        lang,
		months:      map[types.Calendar]fragment{},
		sampleMonth: map[types.Calendar]string{},
		sampleEra:   map[types.Calendar]string{},
	}

	var monthAlts []fragment
	for _, cal := range types.Calendars() {
		if vs := t.MonthVariants(lang, cal); len(vs) > 0 {
			f := capture(FieldMonth, alternation(vs))
			a.months[cal] = f
			monthAlts = append(monthAlts, f)
			a.sampleMonth[cal] = vs[len(vs)-1]
		}
		if vs := t.EraVariants(lang, cal); len(vs) > 0 {
			a.sampleEra[cal] = vs[0]
		}
	}
	a.monthAny = alt(monthAlts...)
	a.eraAny = capture(FieldEra, alternation(t.EraVariants(lang, types.CalendarUnknown)))

	if vs := t.WeekdayVariants(lang); len(vs) > 0 {
		a.weekday = capture(FieldWeekday, alternation(vs))
		a.sampleWeekday = vs[0]
	}

	a.day = alt(
		capture(FieldDay, alternation(t.OrdinalVariants(lang, 31))),
		capture(FieldDay, digitDay(lang)),
	)
	a.year = capture(FieldYear, `[0-9]{1,4}`)
	a.century = alt(
		capture(FieldCentury, alternation(t.OrdinalVariants(lang, 21))),
		capture(FieldCentury, digitDay(lang)),
	)

	a.yearWord = wordLit(alternation(t.Connectors(lang, keywords.ConnectorYearWord)))
	a.dayWord = wordLit(alternation(t.Connectors(lang, keywords.ConnectorDayWord)))
	a.centuryWord = wordLit(alternation(t.Connectors(lang, keywords.ConnectorCenturyWord)))
	a.ofWord = wordLit(ofWords[lang])
	a.rangeStart = wordLit(alternation(t.Connectors(lang, keywords.ConnectorRangeStart)))
	a.rangeEnd = wordLit(alternation(t.Connectors(lang, keywords.ConnectorRangeEnd)))
	a.altWord = wordLit(alternation(t.Connectors(lang, keywords.ConnectorAlternative)))

	a.sampleRangeStart = firstVariant(t.Connectors(lang, keywords.ConnectorRangeStart))
	a.sampleRangeEnd = firstVariant(t.Connectors(lang, keywords.ConnectorRangeEnd))
	a.sampleAlt = firstVariant(t.Connectors(lang, keywords.ConnectorAlternative))
	a.sampleYearWord = firstVariant(t.Connectors(lang, keywords.ConnectorYearWord))
	a.sampleCenturyWord = firstVariant(t.Connectors(lang, keywords.ConnectorCenturyWord))

	return a
}

func firstVariant(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// optPrefix is a word followed by a separator, skipped entirely when
// the word list is empty. Without the guard the separator would
// survive alone and let matches start on whitespace.
func optPrefix(word fragment, sep string) fragment {
	if word.empty() {
		return fragment{}
	}
	return opt(seq(word, lit(sep)))
}

// optEra is the optional trailing era marker. The separator admits no
// space at all because era letters are commonly attached straight to
// the year, as in 1445هـ.
func (a *atoms) optEra() fragment {
	if a.eraAny.empty() {
		return fragment{}
	}
	return opt(seq(lit(tightSep), a.eraAny))
}

// dmyCore is day month year with optional genitive linker, year word,
// and trailing era.
func (a *atoms) dmyCore() fragment {
	return seq(
		a.day,
		lit(wordSep),
		optPrefix(a.ofWord, wordSep),
		a.monthAny,
		lit(wordSep),
		optPrefix(a.yearWord, wordSep),
		a.year,
		a.optEra(),
	)
}

// mdyCore is the English month-first order, July 19, 2023.
func (a *atoms) mdyCore() fragment {
	return seq(
		a.monthAny,
		lit(wordSep),
		a.day,
		lit(wordSep),
		a.year,
		a.optEra(),
	)
}

// dateCore is every full-date word order the language reads.
func (a *atoms) dateCore() fragment {
	if a.lang == keywords.LanguageEnglish {
		return alt(a.dmyCore(), a.mdyCore())
	}
	return a.dmyCore()
}

func (a *atoms) monthYearCore() fragment {
	return seq(
		a.monthAny,
		lit(wordSep),
		optPrefix(a.yearWord, wordSep),
		a.year,
		a.optEra(),
	)
}

// yearCore is a year with optional year word and era. Bare digits
// reach pattern rank only inside composite forms; the standalone year
// shapes demand the word or the era.
func (a *atoms) yearCore() fragment {
	return seq(
		optPrefix(a.yearWord, wordSep),
		a.year,
		a.optEra(),
	)
}

// centuryCore is the century word with an ordinal or numeric century.
// English puts the word after the number, Arabic and Persian before.
func (a *atoms) centuryCore() fragment {
	if a.centuryWord.empty() {
		return fragment{}
	}
	if a.lang == keywords.LanguageEnglish {
		return seq(
			lit(`(?:the\s+)?`),
			a.century,
			lit(wordSep),
			a.centuryWord,
			a.optEra(),
		)
	}
	return seq(
		a.centuryWord,
		lit(wordSep),
		a.century,
		a.optEra(),
	)
}

func numericCore() fragment {
	return seq(
		capture(FieldDay, `[0-9]{1,2}`),
		lit(numSep),
		capture(FieldMonth, `[0-9]{1,2}`),
		lit(numSep),
		capture(FieldYear, `[0-9]{1,4}`),
	)
}

func isoCore() fragment {
	return seq(
		capture(FieldYear, `[0-9]{4}`),
		lit(`-`),
		capture(FieldMonth, `[0-9]{1,2}`),
		lit(`-`),
		capture(FieldDay, `[0-9]{1,2}`),
	)
}

// endpoint is every date form accepted as one side of a range or
// alternative pair, most specific first.
func (a *atoms) endpoint() fragment {
	branches := []fragment{a.dmyCore()}
	if a.lang == keywords.LanguageEnglish {
		branches = append(branches, a.mdyCore())
	}
	branches = append(branches,
		isoCore(),
		seq(numericCore(), a.optEra()),
		a.monthYearCore(),
		a.yearCore(),
		a.centuryCore(),
	)
	return anyOf(branches...)
}

// restatedEndpoint narrows endpoint for restatements with no
// equivalence word between the sides. A slash alone is weak evidence,
// so a side that is only a year must carry its era; otherwise year
// spans like 2023/2024 would land here instead of the range forms.
func (a *atoms) restatedEndpoint() fragment {
	branches := []fragment{a.dmyCore()}
	if a.lang == keywords.LanguageEnglish {
		branches = append(branches, a.mdyCore())
	}
	branches = append(branches,
		isoCore(),
		seq(numericCore(), a.optEra()),
		a.monthYearCore(),
	)
	if !a.eraAny.empty() {
		branches = append(branches, seq(
			optPrefix(a.yearWord, wordSep),
			a.year,
			lit(tightSep),
			a.eraAny,
		))
	}
	branches = append(branches, a.centuryCore())
	return anyOf(branches...)
}

// pairConnector joins the two sides of a range. A dash works in any
// language; the word connectors need surrounding separation.
func (a *atoms) pairConnector() fragment {
	if a.rangeEnd.empty() {
		return lit("(?:" + dashSep + ")")
	}
	return lit("(?:" + dashSep + "|" + wordSep + a.rangeEnd.expr + wordSep + ")")
}
