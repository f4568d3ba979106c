// Package resolve turns scanner matches into classified date
// entities. Classification reads the slot layout, completion copies
// missing components across the sides of a range, and validation
// checks alternative-calendar pairs against the conversion service.
package resolve

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/extract"
	"github.com/muwaqqit/tarikh/pkg/grammar"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// Validation window defaults, in days.
const (
	DefaultAltToleranceDays   = 5
	DefaultAutoCorrectMaxDays = 2
)

// Default financial year month boundaries: quarter starts and ends.
var (
	DefaultFinancialStartMonths = []int{1, 4, 7, 10}
	DefaultFinancialEndMonths   = []int{3, 6, 9, 12}
)

// Options tune classification and validation. Zero values mean the
// defaults.
type Options struct {
	// AltToleranceDays is how far the two sides of an alternative
	// form may disagree before the entity is flagged invalid.
	AltToleranceDays int

	// AutoCorrectMaxDays is the largest disagreement the validator
	// repairs by moving the restated side onto the exact conversion
	// of the main side.
	AutoCorrectMaxDays int

	// FinancialStartMonths and FinancialEndMonths feed the financial
	// year heuristic: a pair whose months sit on these boundaries
	// with years one apart reads as a fiscal span.
	FinancialStartMonths []int
	FinancialEndMonths   []int

	// DefaultCalendar is applied to dates that carry no calendar
	// evidence of their own, typically all-numeric forms.
	DefaultCalendar types.Calendar
}

// Resolver classifies and validates matches. Immutable after
// NewResolver and safe for concurrent use.
type Resolver struct {
	svc        *almanac.Service
	altTol     int
	autoMax    int
	startMonth map[int]bool
	endMonth   map[int]bool
	hint       types.Calendar
}

// NewResolver wires a resolver to a conversion service.
func NewResolver(svc *almanac.Service, opts Options) (*Resolver, error) {
	if svc == nil {
		return nil, errors.New("no conversion service provided")
	}
	if opts.DefaultCalendar != "" && !opts.DefaultCalendar.Known() {
		return nil, fmt.Errorf("unknown default calendar %q", opts.DefaultCalendar)
	}
	if opts.AltToleranceDays <= 0 {
		opts.AltToleranceDays = DefaultAltToleranceDays
	}
	if opts.AutoCorrectMaxDays <= 0 {
		opts.AutoCorrectMaxDays = DefaultAutoCorrectMaxDays
	}
	if len(opts.FinancialStartMonths) == 0 {
		opts.FinancialStartMonths = DefaultFinancialStartMonths
	}
	if len(opts.FinancialEndMonths) == 0 {
		opts.FinancialEndMonths = DefaultFinancialEndMonths
	}
	return &Resolver{
		svc:        svc,
		altTol:     opts.AltToleranceDays,
		autoMax:    opts.AutoCorrectMaxDays,
		startMonth: monthSet(opts.FinancialStartMonths),
		endMonth:   monthSet(opts.FinancialEndMonths),
		hint:       opts.DefaultCalendar,
	}, nil
}

func monthSet(months []int) map[int]bool {
	set := make(map[int]bool, len(months))
	for _, m := range months {
		set[m] = true
	}
	return set
}

// Resolve classifies and validates every match, preserving order.
func (r *Resolver) Resolve(ms []extract.Match) []types.Entity {
	out := make([]types.Entity, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.Validate(r.Classify(m)))
	}
	return out
}

// Classify assembles a match into an entity. Slots get the caller's
// calendar hint and two-digit year expansion, range sides complete
// each other, and the slot layout decides the relation. The match is
// not mutated.
func (r *Resolver) Classify(m extract.Match) types.Entity {
	e := types.Entity{
		Relation:    types.RelationUnknown,
		Corrections: append([]types.Correction(nil), m.Corrections...),
		Span:        m.Span,
		Raw:         m.Raw,
	}
	if d := cloneSlot(m.Slot(types.SlotStart)); d != nil {
		e.Start = *d
	}
	e.StartAlt = cloneSlot(m.Slot(types.SlotStartAlt))
	e.End = cloneSlot(m.Slot(types.SlotEnd))
	e.EndAlt = cloneSlot(m.Slot(types.SlotEndAlt))

	for slot := types.SlotStart; slot <= types.SlotEndAlt; slot++ {
		d := e.Slot(slot)
		if d == nil {
			continue
		}
		r.applyHint(d)
		r.expandYear(&e, slot, d)
	}

	switch m.Kind {
	case grammar.KindPair:
		r.completePair(&e, types.SlotStart, types.SlotEnd)
		e.Complexity = types.ComplexityComposite
		if e.End != nil && differentCalendars(&e.Start, e.End) {
			// A dashed pair of years in two explicit calendars is one
			// point in time restated, not a span.
			e.StartAlt, e.End = e.End, nil
			e.Relation = types.RelationAlternativeForm
		} else if r.financialPair(&e.Start, e.End) {
			e.Relation = types.RelationFinancialYear
		} else {
			e.Relation = types.RelationRange
		}
	case grammar.KindAlternative:
		e.Relation = types.RelationAlternativeForm
		e.Complexity = types.ComplexityComposite
	case grammar.KindCompound:
		r.completePair(&e, types.SlotStart, types.SlotEnd)
		r.completePair(&e, types.SlotStartAlt, types.SlotEndAlt)
		e.Relation = r.compoundRelation(&e)
		e.Complexity = types.ComplexityComplex
	default:
		e.Relation = types.RelationSimple
		e.Complexity = types.ComplexitySimple
	}
	return e
}

func cloneSlot(d *types.ParsedDate) *types.ParsedDate {
	if d == nil {
		return nil
	}
	c := *d
	c.Notes = append([]string(nil), d.Notes...)
	return &c
}

// applyHint settles the calendar of an anchored slot that has no
// evidence of its own.
func (r *Resolver) applyHint(d *types.ParsedDate) {
	if r.hint == "" || d.Calendar.Known() || d.Era != types.EraNone {
		return
	}
	if d.Year == 0 && d.Century == 0 {
		return
	}
	d.Calendar = r.hint
	d.CalendarInferred = true
}

// expandYear widens a two-digit year around the calendar's pivot:
// Gregorian 49/50 splits the 2000s from the 1900s, Hijri 69/70 the
// 1400s from the 1300s, Persian 79/80 likewise. An explicit era keeps
// the year literal, since early years are real dates there.
func (r *Resolver) expandYear(e *types.Entity, slot int, d *types.ParsedDate) {
	if d.Year <= 0 || d.Year > 99 || d.Era != types.EraNone {
		return
	}
	var pivot, late, early int
	switch d.Calendar {
	case types.CalendarHijri:
		pivot, late, early = 70, 1400, 1300
	case types.CalendarPersian:
		pivot, late, early = 80, 1400, 1300
	default:
		pivot, late, early = 50, 2000, 1900
	}
	full := early + d.Year
	if d.Year < pivot {
		full = late + d.Year
	}
	from := strconv.Itoa(d.Year)
	d.Year = full
	d.Approximate = true
	record(e, slot, "year", from, strconv.Itoa(full), "two-digit year expanded around the pivot")
}

// completePair copies missing components between the sides of a
// range. Every copy lands in corrections.
func (r *Resolver) completePair(e *types.Entity, sa, sb int) {
	a, b := e.Slot(sa), e.Slot(sb)
	if a == nil || b == nil {
		return
	}
	r.completeFrom(e, sa, a, b)
	r.completeFrom(e, sb, b, a)
}

func (r *Resolver) completeFrom(e *types.Entity, slot int, d, src *types.ParsedDate) {
	const reason = "completed from the other side of the range"
	if d.Year == 0 && src.Year > 0 && (d.Day > 0 || d.Month > 0) {
		record(e, slot, "year", "", strconv.Itoa(src.Year), reason)
		d.Year = src.Year
	}
	if d.Month == 0 && d.Day > 0 && src.Month > 0 {
		record(e, slot, "month", "", strconv.Itoa(src.Month), reason)
		d.Month = src.Month
	}
	if d.Era == types.EraNone && src.Era != types.EraNone &&
		(!d.Calendar.Known() || d.Calendar == src.Era.Calendar()) {
		record(e, slot, "era", "", string(src.Era), reason)
		d.Era = src.Era
		if !d.Calendar.Known() {
			d.Calendar = src.Era.Calendar()
			d.CalendarInferred = true
		}
	}
	if !d.Calendar.Known() && src.Calendar.Known() {
		record(e, slot, "calendar", "", string(src.Calendar), reason)
		d.Calendar = src.Calendar
		d.CalendarInferred = true
	}
}

// financialPair spots a fiscal span: the textual start month on a
// configured start boundary, the end month on an end boundary, and
// the years exactly one apart.
func (r *Resolver) financialPair(a, b *types.ParsedDate) bool {
	if b == nil {
		return false
	}
	return r.startMonth[a.Month] && r.endMonth[b.Month] &&
		a.Month > 0 && b.Month > 0 && b.Year == a.Year+1
}

// compoundRelation grades a four-slot entity by its rails: a fiscal
// main rail makes it complexFinancial, calendar-restated endpoints a
// complexRange, and anything else a complexAlternative.
func (r *Resolver) compoundRelation(e *types.Entity) types.Relation {
	if r.financialPair(&e.Start, e.End) {
		return types.RelationComplexFinancial
	}
	if differentCalendars(&e.Start, e.StartAlt) || differentCalendars(e.End, e.EndAlt) {
		return types.RelationComplexRange
	}
	return types.RelationComplexAlternative
}

func differentCalendars(a, b *types.ParsedDate) bool {
	return a != nil && b != nil &&
		a.Calendar.Known() && b.Calendar.Known() && a.Calendar != b.Calendar
}

// record appends one repair and lowers the touched slot's confidence.
func record(e *types.Entity, slot int, field, from, to, reason string) {
	e.Corrections = append(e.Corrections, types.Correction{
		Slot:   types.SlotRole(slot),
		Field:  field,
		From:   from,
		To:     to,
		Reason: reason,
	})
	if d := e.Slot(slot); d != nil {
		d.Confidence -= 0.1
		if d.Confidence < 0.5 {
			d.Confidence = 0.5
		}
	}
}
