package grammar

import (
	"fmt"

	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// sampleYear keeps generated examples in the era a calendar's reader
// expects. The values only appear in example strings.
func sampleYear(cal types.Calendar) string {
	switch cal {
	case types.CalendarHijri:
		return "1445"
	case types.CalendarPersian:
		return "1403"
	default:
		return "2023"
	}
}

// exampleCalendar picks the calendar a language's examples lead with.
func (a *atoms) exampleCalendar() types.Calendar {
	var pref []types.Calendar
	switch a.lang {
	case keywords.LanguagePersian:
		pref = []types.Calendar{types.CalendarPersian, types.CalendarGregorian, types.CalendarHijri}
	case keywords.LanguageEnglish:
		pref = []types.Calendar{types.CalendarGregorian, types.CalendarHijri, types.CalendarPersian}
	default:
		pref = []types.Calendar{types.CalendarHijri, types.CalendarGregorian, types.CalendarPersian}
	}
	for _, cal := range pref {
		if _, ok := a.sampleMonth[cal]; ok {
			return cal
		}
	}
	return types.CalendarGregorian
}

func shapeDayMonthYear(a *atoms) *Pattern {
	if a.monthAny.empty() {
		return nil
	}
	var examples []string
	for _, cal := range types.Calendars() {
		if m, ok := a.sampleMonth[cal]; ok {
			examples = append(examples, fmt.Sprintf("15 %s %s", m, sampleYear(cal)))
		}
	}
	return newPattern(
		fmt.Sprintf("%s-day-month-year", a.lang),
		KindSingle, a.lang, priorityDayMonthYear,
		a.dmyCore(),
		examples...,
	)
}

func shapeMonthDayYear(a *atoms) *Pattern {
	if a.lang != keywords.LanguageEnglish || a.monthAny.empty() {
		return nil
	}
	cal := types.CalendarGregorian
	return newPattern(
		"en-month-day-year",
		KindSingle, a.lang, priorityDayMonthYear,
		a.mdyCore(),
		fmt.Sprintf("%s 15, %s", a.sampleMonth[cal], sampleYear(cal)),
	)
}

func shapeWeekdayDate(a *atoms) *Pattern {
	if a.weekday.empty() || a.monthAny.empty() {
		return nil
	}
	frag := seq(
		optPrefix(a.dayWord, wordSep),
		a.weekday,
		lit(wordSep),
		a.dateCore(),
	)
	cal := a.exampleCalendar()
	example := fmt.Sprintf("%s 15 %s %s", a.sampleWeekday, a.sampleMonth[cal], sampleYear(cal))
	return newPattern(
		fmt.Sprintf("%s-weekday-date", a.lang),
		KindSingle, a.lang, priorityWeekdayDate,
		frag,
		example,
	)
}

func shapeMonthYear(a *atoms) *Pattern {
	if a.monthAny.empty() {
		return nil
	}
	cal := a.exampleCalendar()
	return newPattern(
		fmt.Sprintf("%s-month-year", a.lang),
		KindSingle, a.lang, priorityMonthYear,
		a.monthYearCore(),
		fmt.Sprintf("%s %s", a.sampleMonth[cal], sampleYear(cal)),
	)
}

// shapeYearWord is a year introduced by a year word, with the era
// optional. The bare digits alone never form a candidate.
func shapeYearWord(a *atoms) *Pattern {
	if a.yearWord.empty() {
		return nil
	}
	frag := seq(
		a.yearWord,
		lit(wordSep),
		a.year,
		a.optEra(),
	)
	return newPattern(
		fmt.Sprintf("%s-year-word", a.lang),
		KindSingle, a.lang, priorityYearWord,
		frag,
		fmt.Sprintf("%s 1445", a.sampleYearWord),
	)
}

// shapeYearEra is a year followed by a mandatory era marker.
func shapeYearEra(a *atoms) *Pattern {
	if a.eraAny.empty() {
		return nil
	}
	frag := seq(
		a.year,
		lit(tightSep),
		a.eraAny,
	)
	era := a.sampleEra[types.CalendarHijri]
	if era == "" {
		era = a.sampleEra[types.CalendarGregorian]
	}
	return newPattern(
		fmt.Sprintf("%s-year-era", a.lang),
		KindSingle, a.lang, priorityYearEra,
		frag,
		fmt.Sprintf("1445 %s", era),
	)
}

func shapeCentury(a *atoms) *Pattern {
	frag := a.centuryCore()
	if frag.empty() {
		return nil
	}
	var example string
	if a.lang == keywords.LanguageEnglish {
		example = fmt.Sprintf("15th %s", a.sampleCenturyWord)
	} else {
		example = fmt.Sprintf("%s 15", a.sampleCenturyWord)
	}
	return newPattern(
		fmt.Sprintf("%s-century", a.lang),
		KindSingle, a.lang, priorityCentury,
		frag,
		example,
	)
}

// shapeNumericEra is a slash or dash date with the language's era
// marker attached, which settles the calendar the digits are in.
func shapeNumericEra(a *atoms) *Pattern {
	if a.eraAny.empty() {
		return nil
	}
	frag := seq(
		numericCore(),
		lit(tightSep),
		a.eraAny,
	)
	era := a.sampleEra[types.CalendarHijri]
	if era == "" {
		era = a.sampleEra[types.CalendarGregorian]
	}
	return newPattern(
		fmt.Sprintf("%s-numeric-era", a.lang),
		KindSingle, a.lang, priorityNumericEra,
		frag,
		fmt.Sprintf("19/7/1445 %s", era),
	)
}
