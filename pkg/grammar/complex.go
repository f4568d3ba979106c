package grammar

import (
	"fmt"

	"github.com/muwaqqit/tarikh/pkg/types"
)

// shapePair joins two endpoints with a range connector or a dash. The
// sides accept every endpoint form, so year spans, month spans, and
// full-date spans all land here; the resolver works out the precision
// from the filled fields.
func shapePair(a *atoms) *Pattern {
	frag := seq(
		optPrefix(a.rangeStart, wordSep),
		atSlot(types.SlotStart, a.endpoint()),
		a.pairConnector(),
		atSlot(types.SlotEnd, a.endpoint()),
	)

	cal := a.exampleCalendar()
	m := a.sampleMonth[cal]
	y := sampleYear(cal)
	examples := []string{
		fmt.Sprintf("%s 15 %s %s %s 20 %s %s", a.sampleRangeStart, m, y, a.sampleRangeEnd, m, y),
		"1445-1446",
	}
	return newPattern(
		fmt.Sprintf("%s-range", a.lang),
		KindPair, a.lang, priorityPair,
		frag,
		examples...,
	)
}

// shapeDayRange is the contracted span, from day to day of one month:
// the start side carries only a day and inherits the rest from the end
// side during resolution.
func shapeDayRange(a *atoms) *Pattern {
	if a.monthAny.empty() || a.rangeEnd.empty() {
		return nil
	}
	end := seq(
		a.day,
		lit(wordSep),
		optPrefix(a.ofWord, wordSep),
		a.monthAny,
		lit(wordSep),
		optPrefix(a.yearWord, wordSep),
		a.year,
		a.optEra(),
	)
	frag := seq(
		optPrefix(a.rangeStart, wordSep),
		atSlot(types.SlotStart, a.day),
		lit(wordSep),
		a.rangeEnd,
		lit(wordSep),
		atSlot(types.SlotEnd, end),
	)

	cal := a.exampleCalendar()
	example := fmt.Sprintf("%s 15 %s 20 %s %s",
		a.sampleRangeStart, a.sampleRangeEnd, a.sampleMonth[cal], sampleYear(cal))
	return newPattern(
		fmt.Sprintf("%s-day-range", a.lang),
		KindPair, a.lang, priorityDayRange,
		frag,
		example,
	)
}

// shapeAlternative is one date restated in another calendar through an
// equivalence word, such as 1445 هـ الموافق 2023 م.
func shapeAlternative(a *atoms) *Pattern {
	if a.altWord.empty() {
		return nil
	}
	frag := seq(
		atSlot(types.SlotStart, a.endpoint()),
		lit(wordSep),
		a.altWord,
		lit(wordSep),
		atSlot(types.SlotStartAlt, a.endpoint()),
	)

	example := fmt.Sprintf("1445 %s 2023", a.sampleAlt)
	hijriEra := a.sampleEra[types.CalendarHijri]
	gregEra := a.sampleEra[types.CalendarGregorian]
	if hijriEra != "" && gregEra != "" {
		example = fmt.Sprintf("1445 %s %s 2023 %s", hijriEra, a.sampleAlt, gregEra)
	}
	return newPattern(
		fmt.Sprintf("%s-alternative", a.lang),
		KindAlternative, a.lang, priorityAlternative,
		frag,
		example,
	)
}

// shapeSlashAlternative is the restatement with no equivalence word,
// two dates joined by a slash, such as 15 محرم 1445 هـ / 25 يناير
// 2024 م. The sides come from restatedEndpoint so a bare year pair
// stays with the range forms.
func shapeSlashAlternative(a *atoms) *Pattern {
	frag := seq(
		atSlot(types.SlotStart, a.restatedEndpoint()),
		lit(`\s*/\s*`),
		atSlot(types.SlotStartAlt, a.restatedEndpoint()),
	)

	example := "15/1/1445 / 19/7/2023"
	hijriEra := a.sampleEra[types.CalendarHijri]
	gregEra := a.sampleEra[types.CalendarGregorian]
	if hijriEra != "" && gregEra != "" {
		example = fmt.Sprintf("1445 %s / 2023 %s", hijriEra, gregEra)
	}
	return newPattern(
		fmt.Sprintf("%s-slash-alternative", a.lang),
		KindAlternative, a.lang, prioritySlashAlt,
		frag,
		example,
	)
}

// shapeParenAlternative is the parenthesized restatement, such as
// 15/1/2024 (5 رجب 1445).
func shapeParenAlternative(a *atoms) *Pattern {
	frag := seq(
		atSlot(types.SlotStart, a.endpoint()),
		lit(`\s*\(\s*`),
		atSlot(types.SlotStartAlt, a.endpoint()),
		lit(`\s*\)`),
	)

	example := "19/7/2023 (2023-07-19)"
	if cal := a.exampleCalendar(); !a.monthAny.empty() {
		example = fmt.Sprintf("15 %s %s (19/7/2023)", a.sampleMonth[cal], sampleYear(cal))
	}
	return newPattern(
		fmt.Sprintf("%s-paren-alternative", a.lang),
		KindAlternative, a.lang, priorityParenAlt,
		frag,
		example,
	)
}

// shapeCompound is a range whose endpoints each carry their own
// calendar restatement, filling all four entity slots.
func shapeCompound(a *atoms) *Pattern {
	if a.altWord.empty() || a.rangeEnd.empty() {
		return nil
	}
	restated := func(main, alternate int) fragment {
		return seq(
			atSlot(main, a.endpoint()),
			lit(wordSep),
			a.altWord,
			lit(wordSep),
			atSlot(alternate, a.endpoint()),
		)
	}
	frag := seq(
		optPrefix(a.rangeStart, wordSep),
		restated(types.SlotStart, types.SlotStartAlt),
		lit(wordSep),
		a.rangeEnd,
		lit(wordSep),
		restated(types.SlotEnd, types.SlotEndAlt),
	)

	example := fmt.Sprintf("%s 1445 %s 2023 %s 1446 %s 2024",
		a.sampleRangeStart, a.sampleAlt, a.sampleRangeEnd, a.sampleAlt)
	hijriEra := a.sampleEra[types.CalendarHijri]
	gregEra := a.sampleEra[types.CalendarGregorian]
	if hijriEra != "" && gregEra != "" {
		example = fmt.Sprintf("%s 1445 %s %s 2023 %s %s 1446 %s %s 2024 %s",
			a.sampleRangeStart,
			hijriEra, a.sampleAlt, gregEra,
			a.sampleRangeEnd,
			hijriEra, a.sampleAlt, gregEra)
	}
	return newPattern(
		fmt.Sprintf("%s-compound-range", a.lang),
		KindCompound, a.lang, priorityCompound,
		frag,
		example,
	)
}
