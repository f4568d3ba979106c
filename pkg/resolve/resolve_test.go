package resolve

import (
	"math"
	"testing"

	"github.com/muwaqqit/tarikh/pkg/almanac"
	"github.com/muwaqqit/tarikh/pkg/extract"
	"github.com/muwaqqit/tarikh/pkg/grammar"
	"github.com/muwaqqit/tarikh/pkg/types"
)

func newTestResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	svc, err := almanac.New(almanac.Options{StartYear: 2020, EndYear: 2026})
	if err != nil {
		t.Fatalf("building almanac: %v", err)
	}
	r, err := NewResolver(svc, opts)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func pd(day, month, year int, cal types.Calendar) *types.ParsedDate {
	return &types.ParsedDate{Day: day, Month: month, Year: year, Calendar: cal, Confidence: 1}
}

func match(kind grammar.PatternKind, slots ...*types.ParsedDate) extract.Match {
	m := extract.Match{Kind: kind}
	copy(m.Slots[:], slots)
	return m
}

func TestClassifySimple(t *testing.T) {
	r := newTestResolver(t, Options{})
	d := pd(15, 1, 1445, types.CalendarHijri)
	d.Era = types.EraAH

	e := r.Classify(match(grammar.KindSingle, d))
	if e.Relation != types.RelationSimple || e.Complexity != types.ComplexitySimple {
		t.Fatalf("relation %s complexity %s", e.Relation, e.Complexity)
	}
	if e.Start.Day != 15 || e.Start.Year != 1445 {
		t.Errorf("start = %+v", e.Start)
	}
	if len(e.Corrections) != 0 {
		t.Errorf("corrections = %+v", e.Corrections)
	}
}

func TestClassifyCarriesMatchCorrections(t *testing.T) {
	r := newTestResolver(t, Options{})
	m := match(grammar.KindSingle, pd(19, 7, 2023, ""))
	m.Corrections = []types.Correction{{
		Slot: "start", Field: "month", From: "19", To: "7",
		Reason: "month beyond 12, day and month transposed",
	}}

	e := r.Classify(m)
	if len(e.Corrections) != 1 || e.Corrections[0].Field != "month" {
		t.Fatalf("corrections = %+v", e.Corrections)
	}
}

func TestClassifyCompletesDayRange(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := &types.ParsedDate{Day: 15, Confidence: 1}
	end := pd(20, 1, 1445, types.CalendarHijri)
	end.CalendarInferred = true

	e := r.Classify(match(grammar.KindPair, start, nil, end))
	if e.Relation != types.RelationRange {
		t.Fatalf("relation = %s", e.Relation)
	}
	if e.Start.Year != 1445 || e.Start.Month != 1 || e.Start.Day != 15 {
		t.Errorf("start = %d/%d/%d", e.Start.Day, e.Start.Month, e.Start.Year)
	}
	if e.Start.Calendar != types.CalendarHijri || !e.Start.CalendarInferred {
		t.Errorf("start calendar %q inferred %v", e.Start.Calendar, e.Start.CalendarInferred)
	}
	if len(e.Corrections) != 3 {
		t.Fatalf("corrections = %+v, want year, month, calendar", e.Corrections)
	}
	for _, c := range e.Corrections {
		if c.Slot != "start" {
			t.Errorf("correction on slot %q", c.Slot)
		}
	}
	if math.Abs(e.Start.Confidence-0.7) > 1e-9 {
		t.Errorf("confidence = %v after three repairs", e.Start.Confidence)
	}
}

func TestClassifyPropagatesEra(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := &types.ParsedDate{Year: 1440, Confidence: 1}
	end := &types.ParsedDate{Year: 1445, Era: types.EraAH, Calendar: types.CalendarHijri, Confidence: 1}

	e := r.Classify(match(grammar.KindPair, start, nil, end))
	if e.Relation != types.RelationRange {
		t.Fatalf("relation = %s", e.Relation)
	}
	if e.Start.Era != types.EraAH || e.Start.Calendar != types.CalendarHijri {
		t.Errorf("start era %q calendar %q", e.Start.Era, e.Start.Calendar)
	}
	if e.Start.Year != 1440 || e.End.Year != 1445 {
		t.Errorf("years = %d, %d", e.Start.Year, e.End.Year)
	}
	if len(e.Corrections) != 1 || e.Corrections[0].Field != "era" {
		t.Fatalf("corrections = %+v, want one era propagation", e.Corrections)
	}
}

func TestClassifyFinancialYear(t *testing.T) {
	r := newTestResolver(t, Options{})

	e := r.Classify(match(grammar.KindPair,
		pd(0, 4, 2023, types.CalendarGregorian), nil,
		pd(0, 3, 2024, types.CalendarGregorian)))
	if e.Relation != types.RelationFinancialYear {
		t.Errorf("april to march = %s, want financial year", e.Relation)
	}

	e = r.Classify(match(grammar.KindPair,
		pd(0, 2, 2023, types.CalendarGregorian), nil,
		pd(0, 3, 2024, types.CalendarGregorian)))
	if e.Relation != types.RelationRange {
		t.Errorf("february start = %s, want plain range", e.Relation)
	}

	e = r.Classify(match(grammar.KindPair,
		pd(0, 4, 2023, types.CalendarGregorian), nil,
		pd(0, 3, 2025, types.CalendarGregorian)))
	if e.Relation != types.RelationRange {
		t.Errorf("two years apart = %s, want plain range", e.Relation)
	}
}

func TestClassifyFinancialYearCustomBoundaries(t *testing.T) {
	r := newTestResolver(t, Options{
		FinancialStartMonths: []int{7},
		FinancialEndMonths:   []int{6},
	})

	e := r.Classify(match(grammar.KindPair,
		pd(0, 7, 2023, types.CalendarGregorian), nil,
		pd(0, 6, 2024, types.CalendarGregorian)))
	if e.Relation != types.RelationFinancialYear {
		t.Errorf("july to june = %s, want financial year", e.Relation)
	}

	e = r.Classify(match(grammar.KindPair,
		pd(0, 4, 2023, types.CalendarGregorian), nil,
		pd(0, 3, 2024, types.CalendarGregorian)))
	if e.Relation != types.RelationRange {
		t.Errorf("april to march = %s under july boundaries, want plain range", e.Relation)
	}
}

func TestClassifyDashedPairOfCalendars(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := &types.ParsedDate{Year: 1445, Era: types.EraAH, Calendar: types.CalendarHijri, Confidence: 1}
	end := &types.ParsedDate{Year: 2023, Era: types.EraCE, Calendar: types.CalendarGregorian, Confidence: 1}

	e := r.Classify(match(grammar.KindPair, start, nil, end))
	if e.Relation != types.RelationAlternativeForm {
		t.Fatalf("relation = %s, want alternative form", e.Relation)
	}
	if e.End != nil {
		t.Error("end slot should have moved")
	}
	if e.StartAlt == nil || e.StartAlt.Year != 2023 {
		t.Fatalf("start alt = %+v", e.StartAlt)
	}
}

func TestClassifyExpandsTwoDigitYears(t *testing.T) {
	r := newTestResolver(t, Options{})
	tests := []struct {
		name string
		in   *types.ParsedDate
		want int
	}{
		{"gregorian late", pd(15, 1, 99, types.CalendarGregorian), 1999},
		{"gregorian recent", pd(15, 1, 24, types.CalendarGregorian), 2024},
		{"hijri recent", pd(15, 1, 45, types.CalendarHijri), 1445},
		{"hijri late", pd(15, 1, 85, types.CalendarHijri), 1385},
		{"persian recent", pd(15, 1, 2, types.CalendarPersian), 1402},
		{"persian late", pd(15, 1, 85, types.CalendarPersian), 1385},
		{"no calendar", pd(15, 1, 99, ""), 1999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := r.Classify(match(grammar.KindSingle, tt.in))
			if e.Start.Year != tt.want {
				t.Fatalf("year = %d, want %d", e.Start.Year, tt.want)
			}
			if !e.Start.Approximate {
				t.Error("expanded year not marked approximate")
			}
			if len(e.Corrections) != 1 || e.Corrections[0].Field != "year" {
				t.Fatalf("corrections = %+v", e.Corrections)
			}
		})
	}

	literal := pd(0, 0, 99, types.CalendarHijri)
	literal.Era = types.EraAH
	e := r.Classify(match(grammar.KindSingle, literal))
	if e.Start.Year != 99 || len(e.Corrections) != 0 {
		t.Errorf("era-marked year 99 expanded to %d: %+v", e.Start.Year, e.Corrections)
	}
}

func TestClassifyAppliesCalendarHint(t *testing.T) {
	r := newTestResolver(t, Options{DefaultCalendar: types.CalendarGregorian})

	e := r.Classify(match(grammar.KindSingle, pd(19, 7, 2023, "")))
	if e.Start.Calendar != types.CalendarGregorian || !e.Start.CalendarInferred {
		t.Errorf("calendar %q inferred %v", e.Start.Calendar, e.Start.CalendarInferred)
	}

	marked := pd(15, 1, 1445, types.CalendarHijri)
	marked.Era = types.EraAH
	e = r.Classify(match(grammar.KindSingle, marked))
	if e.Start.Calendar != types.CalendarHijri || e.Start.CalendarInferred {
		t.Errorf("era-marked slot rehinted: %q inferred %v", e.Start.Calendar, e.Start.CalendarInferred)
	}
}

func TestValidateWeekday(t *testing.T) {
	r := newTestResolver(t, Options{})

	wrong := pd(19, 7, 2023, types.CalendarGregorian)
	wrong.Weekday = types.Tuesday
	e := r.Validate(r.Classify(match(grammar.KindSingle, wrong)))
	if e.Start.Weekday != types.Wednesday {
		t.Errorf("weekday = %q, want corrected to wednesday", e.Start.Weekday)
	}
	if len(e.Corrections) != 1 || e.Corrections[0].Field != "weekday" {
		t.Fatalf("corrections = %+v", e.Corrections)
	}
	if e.Corrections[0].From != "tuesday" || e.Corrections[0].To != "wednesday" {
		t.Errorf("correction = %+v", e.Corrections[0])
	}

	right := pd(19, 7, 2023, types.CalendarGregorian)
	right.Weekday = types.Wednesday
	e = r.Validate(r.Classify(match(grammar.KindSingle, right)))
	if len(e.Corrections) != 0 {
		t.Errorf("agreeing weekday repaired: %+v", e.Corrections)
	}

	outside := pd(2, 1, 1900, types.CalendarGregorian)
	outside.Weekday = types.Friday
	e = r.Validate(r.Classify(match(grammar.KindSingle, outside)))
	if e.Start.Weekday != types.Friday || len(e.Corrections) != 0 {
		t.Errorf("out-of-table date repaired: %q %+v", e.Start.Weekday, e.Corrections)
	}
}

func TestValidateAlternativeAgreeing(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := pd(15, 1, 1445, types.CalendarHijri)
	start.Era = types.EraAH
	alt := pd(2, 8, 2023, types.CalendarGregorian)
	alt.Era = types.EraCE

	e := r.Validate(r.Classify(match(grammar.KindAlternative, start, alt)))
	if e.Invalid {
		t.Error("exact pair flagged invalid")
	}
	if len(e.Corrections) != 0 {
		t.Errorf("corrections = %+v", e.Corrections)
	}
}

func TestValidateAlternativeAutoCorrect(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := pd(15, 1, 1445, types.CalendarHijri)
	start.Era = types.EraAH
	alt := pd(3, 8, 2023, types.CalendarGregorian)
	alt.Era = types.EraCE

	e := r.Validate(r.Classify(match(grammar.KindAlternative, start, alt)))
	if e.Invalid {
		t.Error("one-day deviation flagged invalid")
	}
	if e.StartAlt.Day != 2 {
		t.Errorf("alt day = %d, want aligned to 2", e.StartAlt.Day)
	}
	if len(e.Corrections) != 1 {
		t.Fatalf("corrections = %+v", e.Corrections)
	}
	c := e.Corrections[0]
	if c.Slot != "start_alt" || c.Field != "day" || c.From != "3" || c.To != "2" {
		t.Errorf("correction = %+v", c)
	}
}

func TestValidateAlternativeMismatch(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := pd(15, 1, 1445, types.CalendarHijri)
	start.Era = types.EraAH
	alt := pd(25, 1, 2024, types.CalendarGregorian)
	alt.Era = types.EraCE

	e := r.Validate(r.Classify(match(grammar.KindAlternative, start, alt)))
	if !e.Invalid {
		t.Fatal("months-apart pair not flagged invalid")
	}
	if e.StartAlt.Day != 25 {
		t.Errorf("alt day = %d, invalid pairs must stay untouched", e.StartAlt.Day)
	}
	if len(e.Corrections) != 0 {
		t.Errorf("corrections = %+v", e.Corrections)
	}
}

func TestValidateAlternativeYears(t *testing.T) {
	r := newTestResolver(t, Options{})

	start := &types.ParsedDate{Year: 1445, Era: types.EraAH, Calendar: types.CalendarHijri, Confidence: 1}
	alt := &types.ParsedDate{Year: 2023, Era: types.EraCE, Calendar: types.CalendarGregorian, Confidence: 1}
	e := r.Validate(r.Classify(match(grammar.KindAlternative, start, alt)))
	if e.Invalid {
		t.Error("overlapping years flagged invalid")
	}

	start = &types.ParsedDate{Year: 1445, Era: types.EraAH, Calendar: types.CalendarHijri, Confidence: 1}
	far := &types.ParsedDate{Year: 2020, Era: types.EraCE, Calendar: types.CalendarGregorian, Confidence: 1}
	e = r.Validate(r.Classify(match(grammar.KindAlternative, start, far)))
	if !e.Invalid {
		t.Error("disjoint years not flagged invalid")
	}
}

func TestValidateSettlesCalendar(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := pd(15, 1, 2024, "")
	alt := pd(5, 7, 1445, types.CalendarHijri)
	alt.CalendarInferred = true

	e := r.Validate(r.Classify(match(grammar.KindAlternative, start, alt)))
	if e.Invalid {
		t.Fatal("pair flagged invalid")
	}
	if e.Start.Calendar != types.CalendarGregorian || !e.Start.CalendarInferred {
		t.Errorf("start calendar %q inferred %v", e.Start.Calendar, e.Start.CalendarInferred)
	}
	if e.StartAlt.Day != 4 {
		t.Errorf("alt day = %d, want aligned to the civil conversion", e.StartAlt.Day)
	}

	var haveCalendar, haveDay bool
	for _, c := range e.Corrections {
		switch {
		case c.Slot == "start" && c.Field == "calendar" && c.To == "gregorian":
			haveCalendar = true
		case c.Slot == "start_alt" && c.Field == "day" && c.From == "5" && c.To == "4":
			haveDay = true
		}
	}
	if !haveCalendar || !haveDay {
		t.Errorf("corrections = %+v", e.Corrections)
	}
}

func TestValidateDemotesBareDay(t *testing.T) {
	r := newTestResolver(t, Options{})
	e := r.Validate(r.Classify(match(grammar.KindSingle, &types.ParsedDate{Day: 15, Confidence: 1})))
	if e.Relation != types.RelationUnknown {
		t.Errorf("relation = %s, want unknown", e.Relation)
	}
	if e.Complexity != types.ComplexityComponent {
		t.Errorf("complexity = %s, want component", e.Complexity)
	}
}

func TestResolveCompound(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := pd(1, 1, 1445, types.CalendarHijri)
	start.Era = types.EraAH
	startAlt := pd(19, 7, 2023, types.CalendarGregorian)
	startAlt.Era = types.EraCE
	end := pd(10, 2, 1445, types.CalendarHijri)
	end.Era = types.EraAH
	endAlt := pd(27, 8, 2023, types.CalendarGregorian)
	endAlt.Era = types.EraCE

	es := r.Resolve([]extract.Match{match(grammar.KindCompound, start, startAlt, end, endAlt)})
	if len(es) != 1 {
		t.Fatalf("entities = %d", len(es))
	}
	e := es[0]
	if e.Relation != types.RelationComplexRange || e.Complexity != types.ComplexityComplex {
		t.Fatalf("relation %s complexity %s", e.Relation, e.Complexity)
	}
	if e.Invalid {
		t.Error("agreeing compound flagged invalid")
	}
	if len(e.Corrections) != 0 {
		t.Errorf("corrections = %+v", e.Corrections)
	}
	if e.SlotCount() != 4 {
		t.Errorf("slots = %d", e.SlotCount())
	}
}

func TestResolveCompoundFinancial(t *testing.T) {
	r := newTestResolver(t, Options{})
	start := pd(0, 4, 2023, types.CalendarGregorian)
	startAlt := &types.ParsedDate{Month: 9, Year: 1444, Calendar: types.CalendarHijri, Confidence: 1}
	end := pd(0, 3, 2024, types.CalendarGregorian)
	endAlt := &types.ParsedDate{Month: 9, Year: 1445, Calendar: types.CalendarHijri, Confidence: 1}

	es := r.Resolve([]extract.Match{match(grammar.KindCompound, start, startAlt, end, endAlt)})
	if es[0].Relation != types.RelationComplexFinancial {
		t.Fatalf("relation = %s, want complex financial", es[0].Relation)
	}
}

func TestNewResolverValidation(t *testing.T) {
	if _, err := NewResolver(nil, Options{}); err == nil {
		t.Error("NewResolver accepted a nil service")
	}
	svc, err := almanac.New(almanac.Options{StartYear: 2023, EndYear: 2024})
	if err != nil {
		t.Fatalf("building almanac: %v", err)
	}
	if _, err := NewResolver(svc, Options{DefaultCalendar: "julian"}); err == nil {
		t.Error("NewResolver accepted an unknown default calendar")
	}
}
