// Package dedupe collapses repeated mentions of one date across a
// document. Two entities count as the same date when every slot role
// they share lands within a tolerance of days on the almanac day
// line, whatever calendar and notation each mention used.
package dedupe

import (
	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// DefaultToleranceDays is how far two mentions may drift apart, in
// days, and still count as one date. One day absorbs the usual
// disagreement between printed Hijri dates and the civil arithmetic.
const DefaultToleranceDays = 1

// Dedupe removes entities that restate a date already kept, comparing
// pseudo day numbers per slot role within toleranceDays. Under
// KeepFirst the earlier mention survives untouched; under
// KeepMostComplete the mention with the most populated fields wins,
// at the position of the earliest occurrence. The result preserves
// the relative order of survivors, never grows, and running it again
// changes nothing. The input slice is not modified.
func Dedupe(entities []types.Entity, toleranceDays int, policy types.DedupPolicy) []types.Entity {
	if len(entities) == 0 {
		return entities
	}
	if toleranceDays < 0 {
		toleranceDays = 0
	}
	if !policy.Valid() {
		policy = types.KeepFirst
	}

	kept := make([]types.Entity, 0, len(entities))
	for _, e := range entities {
		var matched []int
		for i := range kept {
			if duplicates(&kept[i], &e, toleranceDays) {
				matched = append(matched, i)
			}
		}
		if len(matched) == 0 {
			kept = append(kept, e)
			continue
		}
		if policy == types.KeepFirst {
			continue
		}
		kept = fold(kept, matched, e)
	}
	return kept
}

// fold settles a newcomer against every kept entity it duplicates.
// The most field-complete of them survives, earliest seen on ties,
// sitting at the first matched position. Later matched positions go
// away; a newcomer bridging two kept entities is the evidence they
// were one date all along.
func fold(kept []types.Entity, matched []int, e types.Entity) []types.Entity {
	survivor := kept[matched[0]]
	for _, i := range matched[1:] {
		if kept[i].FieldCount() > survivor.FieldCount() {
			survivor = kept[i]
		}
	}
	if e.FieldCount() > survivor.FieldCount() {
		survivor = e
	}
	kept[matched[0]] = survivor

	if len(matched) == 1 {
		return kept
	}
	drop := make(map[int]bool, len(matched)-1)
	for _, i := range matched[1:] {
		drop[i] = true
	}
	out := kept[:0]
	for i := range kept {
		if !drop[i] {
			out = append(out, kept[i])
		}
	}
	return out
}

// duplicates reports whether every slot role present in both entities
// lands within tol days of its counterpart. Roles only one side
// carries do not separate the two; a shared slot that cannot be
// placed on the day line does.
func duplicates(a, b *types.Entity, tol int) bool {
	for slot := types.SlotStart; slot <= types.SlotEndAlt; slot++ {
		da, db := a.Slot(slot), b.Slot(slot)
		if da == nil || db == nil {
			continue
		}
		ja, ok := point(da, db)
		if !ok {
			return false
		}
		jb, ok := point(db, da)
		if !ok {
			return false
		}
		delta := ja - jb
		if delta < 0 {
			delta = -delta
		}
		if delta > tol {
			return false
		}
	}
	return true
}

// point projects a slot onto the arithmetic day line. Missing month
// and day fill with the first, a bare century with its first year. A
// slot without calendar evidence borrows the counterpart's calendar
// and falls back to Gregorian, so two vague mentions still meet on
// one line.
func point(d, counterpart *types.ParsedDate) (int, bool) {
	cal := d.Calendar
	if !cal.Known() {
		cal = counterpart.Calendar
	}
	if !cal.Known() {
		cal = types.CalendarGregorian
	}

	year := d.Year
	if year == 0 && d.Century > 0 {
		year = (d.Century-1)*100 + 1
	}
	if year == 0 {
		return 0, false
	}
	month := d.Month
	if month == 0 {
		month = 1
	}
	day := d.Day
	if day == 0 {
		day = 1
	}
	return almanac.ApproxJDN(almanac.Date{Year: year, Month: month, Day: day}, cal)
}
