package extract

import (
	"fmt"
	"strconv"

	"github.com/muwaqqit/tarikh/pkg/grammar"
	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Match is one selected date mention. Slots hold the normalized
// components per entity slot; the resolver turns them into a classified
// entity.
type Match struct {
	Pattern  string
	Kind     grammar.PatternKind
	Language keywords.Language
	Priority int

	// Position in the original input.
	Span types.Span
	Raw  string

	// Slots indexed by the types slot constants; nil when the pattern
	// left a slot unfilled.
	Slots [4]*types.ParsedDate

	// Corrections records repairs made while normalizing, such as a
	// transposed numeric day and month.
	Corrections []types.Correction
}

// Slot returns the parsed date for a slot index, or nil.
func (m *Match) Slot(slot int) *types.ParsedDate {
	if slot < 0 || slot >= len(m.Slots) {
		return nil
	}
	return m.Slots[slot]
}

// SlotCount reports how many slots the match filled.
func (m *Match) SlotCount() int {
	n := 0
	for _, s := range m.Slots {
		if s != nil {
			n++
		}
	}
	return n
}

// slotCapture accumulates the raw captures that feed one entity slot.
// The first non-empty group wins per field; group order equals textual
// order, so later groups of the same field belong to untaken branches.
type slotCapture struct {
	fields map[grammar.FieldKind]string
	lo, hi int
}

// readCaptures splits a submatch vector into per-slot captures.
func readCaptures(p *grammar.Pattern, m []int, f *folded) map[int]*slotCapture {
	slots := map[int]*slotCapture{}
	for i, fr := range p.Layout() {
		lo, hi := m[2*(i+1)], m[2*(i+1)+1]
		if lo < 0 || hi <= lo {
			continue
		}
		sc := slots[fr.Slot]
		if sc == nil {
			sc = &slotCapture{fields: map[grammar.FieldKind]string{}, lo: lo, hi: hi}
			slots[fr.Slot] = sc
		}
		if lo < sc.lo {
			sc.lo = lo
		}
		if hi > sc.hi {
			sc.hi = hi
		}
		if _, seen := sc.fields[fr.Kind]; !seen {
			sc.fields[fr.Kind] = f.text[lo:hi]
		}
	}
	return slots
}

// leadingNumber parses the digits a capture starts with, ignoring
// ordinal suffixes such as 15th or 15ام.
func leadingNumber(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// buildSlot normalizes one slot's captures into a ParsedDate. The
// second return is false when a component is implausible as part of a
// date, which discards the whole candidate.
func buildSlot(t *keywords.Tables, lang keywords.Language, slot int, sc *slotCapture, f *folded) (*types.ParsedDate, []types.Correction, bool) {
	d := &types.ParsedDate{
		Span: f.span(sc.lo, sc.hi),
		Raw:  f.raw(sc.lo, sc.hi),
	}
	var corrections []types.Correction

	if raw, ok := sc.fields[grammar.FieldWeekday]; ok {
		if k, hit := t.Lookup(raw, keywords.CategoryWeekday, lang); hit {
			d.Weekday = k.Weekday
		} else {
			d.Notes = append(d.Notes, fmt.Sprintf("weekday %q not in vocabulary, dropped", raw))
		}
	}

	if raw, ok := sc.fields[grammar.FieldDay]; ok {
		if k, hit := t.Lookup(raw, keywords.CategoryOrdinal, lang); hit {
			d.Day = k.Value
		} else if n, numeric := leadingNumber(raw); numeric {
			d.Day = n
		} else {
			return nil, nil, false
		}
		if d.Day < 1 || d.Day > 31 {
			return nil, nil, false
		}
	}

	monthNumeric := false
	if raw, ok := sc.fields[grammar.FieldMonth]; ok {
		if k, hit := t.Lookup(raw, keywords.CategoryMonth, lang); hit {
			d.Month = k.Value
			d.Calendar = k.Calendar
			d.CalendarInferred = true
		} else if n, numeric := leadingNumber(raw); numeric {
			d.Month = n
			monthNumeric = true
		} else {
			return nil, nil, false
		}
	}

	if raw, ok := sc.fields[grammar.FieldYear]; ok {
		n, numeric := leadingNumber(raw)
		if !numeric || n == 0 {
			return nil, nil, false
		}
		d.Year = n
	}

	if raw, ok := sc.fields[grammar.FieldCentury]; ok {
		if k, hit := t.Lookup(raw, keywords.CategoryOrdinal, lang); hit {
			d.Century = k.Value
		} else if n, numeric := leadingNumber(raw); numeric {
			d.Century = n
		} else {
			return nil, nil, false
		}
		if d.Century < 1 || d.Century > 30 {
			return nil, nil, false
		}
	}

	if raw, ok := sc.fields[grammar.FieldEra]; ok {
		if k, hit := t.Lookup(raw, keywords.CategoryEra, lang); hit {
			d.Era = k.Era
			if cal := k.Era.Calendar(); cal.Known() {
				if d.Calendar.Known() && d.Calendar != cal {
					d.Notes = append(d.Notes, fmt.Sprintf("month name implies %s but era %s says %s, era kept", d.Calendar, k.Era, cal))
				}
				d.Calendar = cal
				d.CalendarInferred = false
			}
		} else {
			d.Notes = append(d.Notes, fmt.Sprintf("era %q not in vocabulary, dropped", raw))
		}
	}

	// A numeric month beyond 12 with a day that fits reads as a
	// transposed day and month.
	if monthNumeric && d.Month > 12 {
		if d.Day >= 1 && d.Day <= 12 {
			from := d.Month
			d.Day, d.Month = d.Month, d.Day
			corrections = append(corrections, types.Correction{
				Slot:   types.SlotRole(slot),
				Field:  "month",
				From:   strconv.Itoa(from),
				To:     strconv.Itoa(d.Month),
				Reason: "month beyond 12, day and month transposed",
			})
		} else {
			return nil, nil, false
		}
	}
	if d.Month > 12 {
		return nil, nil, false
	}

	d.Confidence = slotConfidence(d, corrections)
	return d, corrections, true
}

// slotConfidence grades a slot by how cleanly it normalized. Each
// degradation note and each repair costs a step; the floor keeps even
// battered slots usable for ranking.
func slotConfidence(d *types.ParsedDate, corrections []types.Correction) float64 {
	c := 1.0 - 0.1*float64(len(d.Notes)) - 0.1*float64(len(corrections))
	if c < 0.5 {
		return 0.5
	}
	return c
}

// plausibleYear vets a slot's year against the window a date mention
// can realistically carry. Vocabulary evidence in the slot widens the
// window down to the early eras; a bare numeric year must look like a
// modern one, except that a full numeric date may carry a two-digit
// year for later pivoting.
func plausibleYear(d *types.ParsedDate, anchored bool) bool {
	if d.Year == 0 {
		return true
	}
	if d.Year > 2600 {
		return false
	}
	if anchored || d.Era != types.EraNone || d.Weekday != types.WeekdayNone ||
		d.Century > 0 || (d.Month > 0 && d.Calendar.Known()) {
		return true
	}
	if d.Day > 0 && d.Month > 0 {
		return d.Year <= 99 || d.Year >= 500
	}
	return d.Year >= 500
}
