// Package render turns classified date entities into one canonical
// English line each. Templates live in a small table keyed by
// precision and calendar combination; anything the table cannot place
// degrades to the raw matched text, never to an error.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Renderer writes entities using the canonical English month and
// weekday labels of the keyword tables. Read-only after New.
type Renderer struct {
	tables *keywords.Tables
}

// New creates a renderer over loaded keyword tables.
func New(tables *keywords.Tables) (*Renderer, error) {
	if tables == nil {
		return nil, fmt.Errorf("creating renderer: nil keyword tables")
	}
	return &Renderer{tables: tables}, nil
}

// key addresses one template: the precision being rendered and the
// calendar combination carrying it. Combinations are a single system,
// a pairing joined by "+", or empty for no calendar evidence.
type key struct {
	precision types.Precision
	combo     string
}

var templates = buildTemplates()

// buildTemplates lays out the whole table. Hijri and Persian single
// forms carry their era label unconditionally because the month names
// alone do not separate the two lines of Hijri reckoning for most
// readers; Gregorian shows an era only when the text had one.
func buildTemplates() map[key]string {
	t := map[key]string{}

	tails := map[types.Calendar]string{
		types.CalendarGregorian: "{era}",
		types.CalendarHijri:     "AH",
		types.CalendarPersian:   "SH",
	}
	for cal, tail := range tails {
		combo := string(cal)
		t[key{types.PrecisionWeekdayDayMonthYear, combo}] = "{weekday}, {day} {month} {year} " + tail
		t[key{types.PrecisionDayMonthYear, combo}] = "{day} {month} {year} " + tail
		t[key{types.PrecisionMonthYear, combo}] = "{month} {year} " + tail
		t[key{types.PrecisionYear, combo}] = "{year} " + tail
		t[key{types.PrecisionCentury, combo}] = "{century} century " + tail
	}

	// No calendar evidence: numeric forms, era only if captured.
	t[key{types.PrecisionWeekdayDayMonthYear, ""}] = "{weekday}, {day}/{month}/{year} {era}"
	t[key{types.PrecisionDayMonthYear, ""}] = "{day}/{month}/{year} {era}"
	t[key{types.PrecisionMonthYear, ""}] = "{month}/{year} {era}"
	t[key{types.PrecisionYear, ""}] = "{year} {era}"
	t[key{types.PrecisionCentury, ""}] = "{century} century {era}"

	slotPrecisions := []types.Precision{
		types.PrecisionWeekdayDayMonthYear,
		types.PrecisionDayMonthYear,
		types.PrecisionMonthYear,
		types.PrecisionYear,
		types.PrecisionCentury,
	}
	cals := types.Calendars()
	var combos []string
	for _, c := range cals {
		combos = append(combos, string(c))
	}
	for i, a := range cals {
		for _, b := range cals[i:] {
			pair := string(a) + "+" + string(b)
			combos = append(combos, pair)
			for _, p := range slotPrecisions {
				t[key{p, pair}] = "{main} ({alt})"
			}
		}
	}

	combos = append(combos, "")
	for _, combo := range combos {
		t[key{types.PrecisionRange, combo}] = "{start} to {end}"
	}
	return t
}

// Render writes the canonical line for one entity.
func (r *Renderer) Render(e *types.Entity) string {
	start := r.side(e.Slot(types.SlotStart), e.Slot(types.SlotStartAlt))
	if start == "" {
		return e.Raw
	}
	if e.End == nil {
		return start
	}
	end := r.side(e.End, e.EndAlt)
	if end == "" {
		return e.Raw
	}

	tpl, ok := templates[key{types.PrecisionRange, comboOf(e.Calendars())}]
	if !ok {
		return e.Raw
	}
	out := strings.NewReplacer("{start}", start, "{end}", end).Replace(tpl)
	switch e.Relation {
	case types.RelationFinancialYear, types.RelationComplexFinancial:
		out = "financial year " + out
	}
	return out
}

// side renders a slot together with its alternative-calendar
// restatement, when present.
func (r *Renderer) side(main, alt *types.ParsedDate) string {
	m := r.slot(main)
	if m == "" {
		return ""
	}
	a := r.slot(alt)
	if a == "" {
		return m
	}
	tpl, ok := templates[key{main.Precision(), pairCombo(main.Calendar, alt.Calendar)}]
	if !ok {
		return ""
	}
	return strings.NewReplacer("{main}", m, "{alt}", a).Replace(tpl)
}

// slot fills the placeholder template for one parsed date. Runs of
// blanks left by absent optional fields collapse afterwards.
func (r *Renderer) slot(d *types.ParsedDate) string {
	if d == nil || d.Empty() {
		return ""
	}
	p := d.Precision()
	if p == types.PrecisionNone {
		return ""
	}
	tpl, ok := templates[key{p, comboOf(calendarsOf(d))}]
	if !ok {
		return ""
	}

	era := ""
	if d.Era != types.EraNone {
		era = string(d.Era)
	}
	out := strings.NewReplacer(
		"{weekday}", keywords.WeekdayLabel(d.Weekday),
		"{day}", strconv.Itoa(d.Day),
		"{month}", r.monthText(d),
		"{year}", strconv.Itoa(d.Year),
		"{century}", ordinal(d.Century),
		"{era}", era,
	).Replace(tpl)
	return strings.Join(strings.Fields(out), " ")
}

// monthText prefers the canonical label and falls back to the number
// when the calendar is unknown or the label is missing.
func (r *Renderer) monthText(d *types.ParsedDate) string {
	if label := r.tables.MonthLabel(d.Calendar, d.Month); label != "" {
		return label
	}
	return strconv.Itoa(d.Month)
}

func calendarsOf(d *types.ParsedDate) []types.Calendar {
	if !d.Calendar.Known() {
		return nil
	}
	return []types.Calendar{d.Calendar}
}

// comboOf canonicalizes a calendar list into a table combination.
func comboOf(cals []types.Calendar) string {
	names := make([]string, len(cals))
	for i, c := range cals {
		names[i] = string(c)
	}
	return strings.Join(names, "+")
}

// pairCombo is the combination for a slot and its restatement, in
// canonical calendar order. An unknown side yields a combination the
// table does not carry, which surfaces as the raw-text fallback.
func pairCombo(a, b types.Calendar) string {
	if !a.Known() || !b.Known() {
		return "?"
	}
	for _, c := range types.Calendars() {
		if b == c && a != c {
			a, b = b, a
			break
		}
		if a == c {
			break
		}
	}
	return string(a) + "+" + string(b)
}

// ordinal writes 1st, 2nd, 3rd, 15th.
func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
