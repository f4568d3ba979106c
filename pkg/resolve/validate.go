package resolve

import (
	"strconv"

	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Validate runs the checks that need the conversion service: weekday
// agreement, alternative-form equivalence, and the slot invariants
// that survive completion. Repairs land in the entity's corrections;
// a pair beyond tolerance is flagged invalid, never dropped.
func (r *Resolver) Validate(e types.Entity) types.Entity {
	for slot := types.SlotStart; slot <= types.SlotEndAlt; slot++ {
		if d := e.Slot(slot); d != nil {
			r.checkWeekday(&e, slot, d)
		}
	}
	switch e.Relation {
	case types.RelationAlternativeForm:
		r.checkAlternative(&e, types.SlotStart, types.SlotStartAlt)
	case types.RelationComplexRange, types.RelationComplexAlternative, types.RelationComplexFinancial:
		r.checkAlternative(&e, types.SlotStart, types.SlotStartAlt)
		r.checkAlternative(&e, types.SlotEnd, types.SlotEndAlt)
	}
	demote(&e)
	return e
}

// checkWeekday verifies a captured weekday against the table and
// keeps the table's answer on conflict. Dates outside the table are
// left alone: a loaded observational almanac outranks arithmetic, but
// arithmetic alone is not strong enough to overrule the text.
func (r *Resolver) checkWeekday(e *types.Entity, slot int, d *types.ParsedDate) {
	if d.Weekday == types.WeekdayNone || !d.HasFullDate() || !d.Calendar.Known() {
		return
	}
	date := almanac.Date{Year: d.Year, Month: d.Month, Day: d.Day}
	if _, ok := r.svc.JDN(date, d.Calendar); !ok {
		return
	}
	w, ok := r.svc.Weekday(date, d.Calendar)
	if !ok || w == d.Weekday {
		return
	}
	record(e, slot, "weekday", string(d.Weekday), string(w), "weekday disagrees with the date, table weekday kept")
	d.Weekday = w
}

// checkAlternative tests the equivalence claim between a slot and its
// restatement. Sides without calendar evidence are settled first, the
// coarser precisions compare by span overlap, and two full dates may
// be nudged together within the auto-correct window.
func (r *Resolver) checkAlternative(e *types.Entity, sa, sb int) {
	a, b := e.Slot(sa), e.Slot(sb)
	if a == nil || b == nil {
		return
	}
	r.settleCalendar(e, sa, a, b)
	r.settleCalendar(e, sb, b, a)

	alo, ahi, aExact, ok := r.slotSpan(a)
	if !ok {
		return
	}
	blo, bhi, bExact, ok := r.slotSpan(b)
	if !ok {
		return
	}
	if alo <= bhi && blo <= ahi {
		return
	}
	if a.HasFullDate() && b.HasFullDate() {
		delta := alo - blo
		if delta < 0 {
			delta = -delta
		}
		if delta <= r.autoMax && aExact && bExact {
			r.align(e, sb, b, a)
			return
		}
		if delta <= r.altTol {
			return
		}
	}
	e.Invalid = true
}

// settleCalendar tries each calendar for an evidence-free side of an
// alternative pair and keeps the first that lands within tolerance of
// the known side. The restatement itself is the evidence.
func (r *Resolver) settleCalendar(e *types.Entity, slot int, d, other *types.ParsedDate) {
	if d.Calendar.Known() || !other.Calendar.Known() || !d.Complete() {
		return
	}
	olo, ohi, _, ok := r.slotSpan(other)
	if !ok {
		return
	}
	for _, cal := range types.Calendars() {
		if cal == other.Calendar {
			continue
		}
		trial := *d
		trial.Calendar = cal
		lo, hi, _, ok := r.slotSpan(&trial)
		if !ok {
			continue
		}
		if lo-r.altTol <= ohi && olo <= hi+r.altTol {
			record(e, slot, "calendar", "", string(cal), "calendar settled by the alternative form")
			d.Calendar = cal
			d.CalendarInferred = true
			return
		}
	}
}

// align moves a restated slot onto the exact conversion of its main
// side, one correction per changed field.
func (r *Resolver) align(e *types.Entity, slot int, d, src *types.ParsedDate) {
	want, ok := r.svc.Convert(
		almanac.Date{Year: src.Year, Month: src.Month, Day: src.Day},
		src.Calendar, d.Calendar,
	)
	if !ok {
		return
	}
	const reason = "aligned to the exact conversion of the paired slot"
	if want.Day != d.Day {
		record(e, slot, "day", strconv.Itoa(d.Day), strconv.Itoa(want.Day), reason)
		d.Day = want.Day
	}
	if want.Month != d.Month {
		record(e, slot, "month", strconv.Itoa(d.Month), strconv.Itoa(want.Month), reason)
		d.Month = want.Month
	}
	if want.Year != d.Year {
		record(e, slot, "year", strconv.Itoa(d.Year), strconv.Itoa(want.Year), reason)
		d.Year = want.Year
	}
}

// slotSpan returns the day-number range a slot covers: one day for a
// full date, else the month, year, or century it names. The third
// result reports that the value came from a table row rather than
// arithmetic.
func (r *Resolver) slotSpan(d *types.ParsedDate) (int, int, bool, bool) {
	if !d.Calendar.Known() {
		return 0, 0, false, false
	}
	switch {
	case d.HasFullDate():
		date := almanac.Date{Year: d.Year, Month: d.Month, Day: d.Day}
		if jdn, ok := r.svc.JDN(date, d.Calendar); ok {
			return jdn, jdn, true, true
		}
		if jdn, ok := almanac.ApproxJDN(date, d.Calendar); ok {
			return jdn, jdn, false, true
		}
		return 0, 0, false, false
	case d.Month > 0 && d.Year > 0:
		lo, ok := almanac.ApproxJDN(almanac.Date{Year: d.Year, Month: d.Month, Day: 1}, d.Calendar)
		if !ok {
			return 0, 0, false, false
		}
		ny, nm := d.Year, d.Month+1
		if nm > 12 {
			ny, nm = ny+1, 1
		}
		hi, ok := almanac.ApproxJDN(almanac.Date{Year: ny, Month: nm, Day: 1}, d.Calendar)
		if !ok {
			return 0, 0, false, false
		}
		return lo, hi - 1, false, true
	case d.Year > 0:
		lo, hi, ok := almanac.YearSpan(d.Year, d.Calendar)
		return lo, hi, false, ok
	case d.Century > 0:
		lo, _, ok := almanac.YearSpan((d.Century-1)*100+1, d.Calendar)
		if !ok {
			return 0, 0, false, false
		}
		_, hi, ok := almanac.YearSpan(d.Century*100, d.Calendar)
		if !ok {
			return 0, 0, false, false
		}
		return lo, hi, false, true
	}
	return 0, 0, false, false
}

// demote enforces what completion could not fix: a day still missing
// its month or year drops the entity to component grade, and an
// entity with no year or century anywhere loses its relation rather
// than have one guessed.
func demote(e *types.Entity) {
	anchored := false
	for _, d := range e.Slots() {
		if d.Complete() {
			anchored = true
		}
		if d.Day > 0 && (d.Month == 0 || d.Year == 0) {
			e.Complexity = types.ComplexityComponent
		}
	}
	if !anchored {
		e.Relation = types.RelationUnknown
		e.Complexity = types.ComplexityComponent
	}
}
