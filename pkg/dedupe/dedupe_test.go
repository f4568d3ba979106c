package dedupe

import (
	"testing"

	"github.com/muwaqqit/tarikh/pkg/types"
)

func date(day, month, year int, cal types.Calendar) types.ParsedDate {
	return types.ParsedDate{Day: day, Month: month, Year: year, Calendar: cal, Confidence: 1}
}

func simple(d types.ParsedDate) types.Entity {
	return types.Entity{Start: d, Relation: types.RelationSimple, Complexity: types.ComplexitySimple}
}

func alternative(main, alt types.ParsedDate) types.Entity {
	return types.Entity{
		Start:      main,
		StartAlt:   &alt,
		Relation:   types.RelationAlternativeForm,
		Complexity: types.ComplexityComposite,
	}
}

func span(start, end types.ParsedDate) types.Entity {
	return types.Entity{
		Start:      start,
		End:        &end,
		Relation:   types.RelationRange,
		Complexity: types.ComplexityComposite,
	}
}

func TestDedupeAlternatives(t *testing.T) {
	hijri1445 := date(0, 0, 1445, types.CalendarHijri)
	greg2023 := date(0, 0, 2023, types.CalendarGregorian)
	hijri1446 := date(0, 0, 1446, types.CalendarHijri)
	greg2024 := date(0, 0, 2024, types.CalendarGregorian)

	in := []types.Entity{
		alternative(hijri1445, greg2023),
		alternative(hijri1445, greg2023),
		alternative(hijri1446, greg2024),
	}
	out := Dedupe(in, 1, types.KeepFirst)
	if len(out) != 2 {
		t.Fatalf("Dedupe kept %d entities, want 2", len(out))
	}
	if out[0].Start.Year != 1445 || out[1].Start.Year != 1446 {
		t.Errorf("Kept years %d, %d; want 1445, 1446", out[0].Start.Year, out[1].Start.Year)
	}
	if len(in) != 3 {
		t.Errorf("Input length changed to %d", len(in))
	}
}

func TestDedupeToleranceWindow(t *testing.T) {
	a := simple(date(19, 7, 2023, types.CalendarGregorian))
	b := simple(date(20, 7, 2023, types.CalendarGregorian))

	cases := []struct {
		name string
		tol  int
		want int
	}{
		{"exact only", 0, 2},
		{"one day", 1, 1},
		{"negative clamps to exact", -3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Dedupe([]types.Entity{a, b}, tc.tol, types.KeepFirst)
			if len(out) != tc.want {
				t.Fatalf("Dedupe kept %d entities, want %d", len(out), tc.want)
			}
		})
	}
}

func TestDedupeKeepMostComplete(t *testing.T) {
	vague := simple(types.ParsedDate{Month: 7, Year: 2023, Calendar: types.CalendarGregorian})
	full := simple(date(1, 7, 2023, types.CalendarGregorian))

	out := Dedupe([]types.Entity{vague, full}, 1, types.KeepMostComplete)
	if len(out) != 1 {
		t.Fatalf("Dedupe kept %d entities, want 1", len(out))
	}
	if out[0].Start.Day != 1 {
		t.Errorf("Survivor day = %d, want the fuller mention", out[0].Start.Day)
	}

	out = Dedupe([]types.Entity{vague, full}, 1, types.KeepFirst)
	if len(out) != 1 || out[0].Start.Day != 0 {
		t.Errorf("KeepFirst should retain the earlier mention, got %+v", out)
	}
}

func TestDedupeBorrowsCalendar(t *testing.T) {
	cases := []struct {
		name string
		a, b types.ParsedDate
		want int
	}{
		{
			"unknown borrows gregorian",
			date(19, 7, 2023, types.CalendarGregorian),
			date(19, 7, 2023, types.CalendarUnknown),
			1,
		},
		{
			"unknown borrows hijri",
			date(1, 1, 1445, types.CalendarHijri),
			date(1, 1, 1445, types.CalendarUnknown),
			1,
		},
		{
			"both unknown read as gregorian",
			date(19, 7, 2023, types.CalendarUnknown),
			date(19, 7, 2023, types.CalendarUnknown),
			1,
		},
		{
			"explicit calendars stay apart",
			date(1, 1, 1445, types.CalendarHijri),
			date(1, 1, 1445, types.CalendarGregorian),
			2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Dedupe([]types.Entity{simple(tc.a), simple(tc.b)}, 1, types.KeepFirst)
			if len(out) != tc.want {
				t.Fatalf("Dedupe kept %d entities, want %d", len(out), tc.want)
			}
		})
	}
}

func TestDedupeYearlessNeverCollapses(t *testing.T) {
	a := types.Entity{
		Start:      types.ParsedDate{Day: 15},
		Relation:   types.RelationUnknown,
		Complexity: types.ComplexityComponent,
	}
	out := Dedupe([]types.Entity{a, a}, 1, types.KeepFirst)
	if len(out) != 2 {
		t.Fatalf("Dedupe kept %d entities, want both yearless mentions", len(out))
	}
}

func TestDedupeComparesSharedRolesOnly(t *testing.T) {
	lone := simple(date(19, 7, 2023, types.CalendarGregorian))
	ranged := span(
		date(19, 7, 2023, types.CalendarGregorian),
		date(20, 8, 2023, types.CalendarGregorian),
	)

	out := Dedupe([]types.Entity{lone, ranged}, 1, types.KeepFirst)
	if len(out) != 1 {
		t.Fatalf("Dedupe kept %d entities, want 1", len(out))
	}
	if out[0].End != nil {
		t.Error("KeepFirst should retain the lone mention")
	}

	out = Dedupe([]types.Entity{lone, ranged}, 1, types.KeepMostComplete)
	if len(out) != 1 || out[0].End == nil {
		t.Fatalf("KeepMostComplete should retain the range, got %+v", out)
	}
}

func TestDedupeCenturies(t *testing.T) {
	c15 := types.Entity{
		Start:      types.ParsedDate{Century: 15, Calendar: types.CalendarHijri},
		Relation:   types.RelationSimple,
		Complexity: types.ComplexitySimple,
	}
	c14 := types.Entity{
		Start:      types.ParsedDate{Century: 14, Calendar: types.CalendarHijri},
		Relation:   types.RelationSimple,
		Complexity: types.ComplexitySimple,
	}

	if out := Dedupe([]types.Entity{c15, c15}, 1, types.KeepFirst); len(out) != 1 {
		t.Errorf("Equal centuries kept %d entities, want 1", len(out))
	}
	if out := Dedupe([]types.Entity{c15, c14}, 1, types.KeepFirst); len(out) != 2 {
		t.Errorf("Distinct centuries kept %d entities, want 2", len(out))
	}
}

func TestDedupeBridgingMention(t *testing.T) {
	shared := date(19, 7, 2023, types.CalendarGregorian)
	a := span(shared, date(1, 3, 2024, types.CalendarGregorian))
	b := span(shared, date(1, 3, 2025, types.CalendarGregorian))
	bridge := alternative(shared, date(1, 1, 1445, types.CalendarHijri))

	out := Dedupe([]types.Entity{a, b, bridge}, 1, types.KeepFirst)
	if len(out) != 2 {
		t.Fatalf("KeepFirst kept %d entities, want the two ranges", len(out))
	}

	out = Dedupe([]types.Entity{a, b, bridge}, 1, types.KeepMostComplete)
	if len(out) != 1 {
		t.Fatalf("KeepMostComplete kept %d entities, want the bridged mentions folded", len(out))
	}
	if out[0].End == nil || out[0].End.Year != 2024 {
		t.Errorf("Survivor = %+v, want the earliest range", out[0])
	}

	again := Dedupe(out, 1, types.KeepMostComplete)
	if len(again) != len(out) {
		t.Errorf("Second pass changed the result to %d entities", len(again))
	}
}

func TestDedupePreservesDistinct(t *testing.T) {
	in := []types.Entity{
		simple(date(19, 7, 2023, types.CalendarGregorian)),
		simple(date(1, 1, 1445, types.CalendarHijri)),
		simple(date(28, 4, 1402, types.CalendarPersian)),
	}
	out := Dedupe(in, 1, types.KeepFirst)
	if len(out) != 3 {
		t.Fatalf("Dedupe kept %d entities, want all 3", len(out))
	}
	for i := range in {
		if out[i].Start.Year != in[i].Start.Year || out[i].Start.Calendar != in[i].Start.Calendar {
			t.Errorf("Order changed at %d: %+v", i, out[i].Start)
		}
	}

	if out := Dedupe(nil, 1, types.KeepFirst); len(out) != 0 {
		t.Errorf("Dedupe(nil) = %v", out)
	}
}
