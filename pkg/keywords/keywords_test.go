package keywords

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muwaqqit/tarikh/pkg/types"
)

func TestFold(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"tashkeel_stripped", "مُحَرَّم", "محرم"},
		{"tatweel_stripped", "هـ", "ه"},
		{"hamza_alef_unified", "أبريل", "ابريل"},
		{"madda_alef_unified", "آذار", "اذار"},
		{"alef_maqsura_unified", "جمادى", "جمادي"},
		{"teh_marbuta_unified", "سنة", "سنه"},
		{"farsi_yeh_unified", "فروردین", "فروردين"},
		{"farsi_kaf_unified", "یکشنبه", "يكشنبه"},
		{"zwnj_to_space", "سه‌شنبه", "سه شنبه"},
		{"arabic_indic_digits", "١٤٤٥", "1445"},
		{"extended_arabic_indic_digits", "۱۴۰۳", "1403"},
		{"latin_lowercased", "January", "january"},
		{"apostrophe_stripped", "Rabi' al-Awwal", "rabi al-awwal"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fold(tc.input); got != tc.want {
				t.Errorf("Fold(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFoldIdempotent(t *testing.T) {
	samples := []string{
		"مُحَرَّم", "ربيع الأول", "ژانویه", "سه‌شنبه", "١٤٤٥ هـ",
		"Rabi' al-Awwal", "15 JANUARY 2024", "ذو القعدة",
	}
	for _, s := range samples {
		once := Fold(s)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold not idempotent for %q: %q -> %q", s, once, twice)
		}
	}
}

func TestFoldKeyCollapsesWhitespace(t *testing.T) {
	got := FoldKey("  ربيع   الأول ")
	if got != "ربيع الاول" {
		t.Errorf("FoldKey = %q, want %q", got, "ربيع الاول")
	}
}

func TestLoadDefaults(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	langs := tables.Languages()
	if len(langs) != 3 {
		t.Fatalf("Expected 3 languages, got %v", langs)
	}
	for _, l := range AllLanguages() {
		if !tables.Has(l) {
			t.Errorf("Expected language %q to be loaded", l)
		}
	}
}

func TestLookup(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cases := []struct {
		name     string
		token    string
		category Category
		language Language
		found    bool
		check    func(t *testing.T, k Key)
	}{
		{
			name: "hijri_month_with_diacritics", token: "مُحَرَّم", category: CategoryMonth, language: LanguageArabic, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 1 || k.Calendar != types.CalendarHijri {
					t.Errorf("Expected Muharram (1, hijri), got (%d, %s)", k.Value, k.Calendar)
				}
			},
		},
		{
			name: "levantine_gregorian_month", token: "كانون الثاني", category: CategoryMonth, language: LanguageArabic, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 1 || k.Calendar != types.CalendarGregorian {
					t.Errorf("Expected January (1, gregorian), got (%d, %s)", k.Value, k.Calendar)
				}
			},
		},
		{
			name: "persian_solar_month", token: "فروردین", category: CategoryMonth, language: LanguagePersian, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 1 || k.Calendar != types.CalendarPersian {
					t.Errorf("Expected Farvardin (1, persian), got (%d, %s)", k.Value, k.Calendar)
				}
			},
		},
		{
			name: "persian_hijri_month_with_zwnj", token: "ربیع‌الاول", category: CategoryMonth, language: LanguagePersian, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 3 || k.Calendar != types.CalendarHijri {
					t.Errorf("Expected Rabi al-Awwal (3, hijri), got (%d, %s)", k.Value, k.Calendar)
				}
			},
		},
		{
			name: "transliterated_month_with_apostrophe", token: "Rabi' al-Awwal", category: CategoryMonth, language: LanguageEnglish, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 3 || k.Calendar != types.CalendarHijri {
					t.Errorf("Expected Rabi al-Awwal (3, hijri), got (%d, %s)", k.Value, k.Calendar)
				}
			},
		},
		{
			name: "hijri_era_marker", token: "هـ", category: CategoryEra, language: LanguageArabic, found: true,
			check: func(t *testing.T, k Key) {
				if k.Era != types.EraAH || k.Calendar != types.CalendarHijri {
					t.Errorf("Expected AH/hijri, got %s/%s", k.Era, k.Calendar)
				}
			},
		},
		{
			name: "bce_era_marker", token: "ق.م", category: CategoryEra, language: LanguageArabic, found: true,
			check: func(t *testing.T, k Key) {
				if k.Era != types.EraBCE {
					t.Errorf("Expected BCE, got %s", k.Era)
				}
			},
		},
		{
			name: "persian_solar_era", token: "ه.ش", category: CategoryEra, language: LanguagePersian, found: true,
			check: func(t *testing.T, k Key) {
				if k.Era != types.EraSH || k.Calendar != types.CalendarPersian {
					t.Errorf("Expected SH/persian, got %s/%s", k.Era, k.Calendar)
				}
			},
		},
		{
			name: "persian_weekday", token: "یکشنبه", category: CategoryWeekday, language: LanguagePersian, found: true,
			check: func(t *testing.T, k Key) {
				if k.Weekday != types.Sunday {
					t.Errorf("Expected sunday, got %s", k.Weekday)
				}
			},
		},
		{
			name: "arabic_ordinal_compound", token: "الخامس عشر", category: CategoryOrdinal, language: LanguageArabic, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 15 {
					t.Errorf("Expected 15, got %d", k.Value)
				}
			},
		},
		{
			name: "english_ordinal", token: "twenty-first", category: CategoryOrdinal, language: LanguageEnglish, found: true,
			check: func(t *testing.T, k Key) {
				if k.Value != 21 {
					t.Errorf("Expected 21, got %d", k.Value)
				}
			},
		},
		{
			name: "range_start_connector", token: "من", category: CategoryConnector, language: LanguageArabic, found: true,
			check: func(t *testing.T, k Key) {
				if k.Connector != ConnectorRangeStart {
					t.Errorf("Expected range_start, got %s", k.Connector)
				}
			},
		},
		{name: "miss_not_a_keyword", token: "قطة", category: CategoryMonth, language: LanguageArabic, found: false},
		{name: "miss_wrong_category", token: "محرم", category: CategoryWeekday, language: LanguageArabic, found: false},
		{name: "miss_unknown_language", token: "محرم", category: CategoryMonth, language: Language("ru"), found: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			k, ok := tables.Lookup(tc.token, tc.category, tc.language)
			if ok != tc.found {
				t.Fatalf("Lookup(%q, %s, %s) found=%v, want %v", tc.token, tc.category, tc.language, ok, tc.found)
			}
			if ok && tc.check != nil {
				tc.check(t, k)
			}
		})
	}
}

func TestPackCompleteness(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	declared := map[Language][]types.Calendar{
		LanguageArabic:  {types.CalendarHijri, types.CalendarGregorian},
		LanguagePersian: {types.CalendarPersian, types.CalendarHijri, types.CalendarGregorian},
		LanguageEnglish: {types.CalendarGregorian, types.CalendarHijri, types.CalendarPersian},
	}

	for lang, cals := range declared {
		for _, cal := range cals {
			seen := map[int]bool{}
			for _, k := range tables.langs[lang].lookup[CategoryMonth] {
				if k.Calendar == cal {
					seen[k.Value] = true
				}
			}
			for m := 1; m <= 12; m++ {
				if !seen[m] {
					t.Errorf("Language %s calendar %s is missing month %d", lang, cal, m)
				}
			}
		}
	}

	for _, lang := range AllLanguages() {
		days := map[types.Weekday]bool{}
		for _, k := range tables.langs[lang].lookup[CategoryWeekday] {
			days[k.Weekday] = true
		}
		if len(days) != 7 {
			t.Errorf("Language %s has %d weekdays, want 7", lang, len(days))
		}

		values := map[int]bool{}
		for _, k := range tables.langs[lang].lookup[CategoryOrdinal] {
			values[k.Value] = true
		}
		for v := 1; v <= 31; v++ {
			if !values[v] {
				t.Errorf("Language %s is missing ordinal %d", lang, v)
			}
		}
	}
}

func TestMonthLabels(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cases := []struct {
		cal   types.Calendar
		month int
		want  string
	}{
		{types.CalendarHijri, 1, "Muharram"},
		{types.CalendarHijri, 9, "Ramadan"},
		{types.CalendarGregorian, 1, "January"},
		{types.CalendarPersian, 1, "Farvardin"},
		{types.CalendarPersian, 12, "Esfand"},
	}

	for _, tc := range cases {
		if got := tables.MonthLabel(tc.cal, tc.month); got != tc.want {
			t.Errorf("MonthLabel(%s, %d) = %q, want %q", tc.cal, tc.month, got, tc.want)
		}
	}

	if got := tables.MonthLabel(types.CalendarHijri, 13); got != "" {
		t.Errorf("Expected empty label for month 13, got %q", got)
	}
}

func TestVariantsLongestFirst(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	check := func(name string, vs []string) {
		for i := 1; i < len(vs); i++ {
			if len(vs[i-1]) < len(vs[i]) {
				t.Errorf("%s variants not longest-first: %q before %q", name, vs[i-1], vs[i])
			}
		}
	}

	for _, lang := range tables.Languages() {
		for _, cal := range types.Calendars() {
			check("month", tables.MonthVariants(lang, cal))
			check("era", tables.EraVariants(lang, cal))
		}
		check("era_all", tables.EraVariants(lang, types.CalendarUnknown))
		check("weekday", tables.WeekdayVariants(lang))
		check("ordinal", tables.OrdinalVariants(lang, 31))
	}
}

func TestOrdinalVariantsMaxFilter(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	all := tables.OrdinalVariants(LanguageEnglish, 31)
	capped := tables.OrdinalVariants(LanguageEnglish, 21)
	if len(capped) >= len(all) {
		t.Errorf("Expected capped list shorter than full list, got %d >= %d", len(capped), len(all))
	}
	for _, v := range capped {
		if v == "thirty-first" {
			t.Error("Expected thirty-first to be filtered out at max 21")
		}
	}
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	pack := `language: ar
connectors:
  alternative: [يوافقه]
`
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(pack), 0644); err != nil {
		t.Fatalf("writing override pack: %v", err)
	}

	tables, err := LoadWithOverrides(dir)
	if err != nil {
		t.Fatalf("LoadWithOverrides failed: %v", err)
	}

	k, ok := tables.Lookup("يوافقه", CategoryConnector, LanguageArabic)
	if !ok {
		t.Fatal("Expected override connector to be found")
	}
	if k.Connector != ConnectorAlternative {
		t.Errorf("Expected alternative connector, got %s", k.Connector)
	}

	// Defaults must still be present.
	if _, ok := tables.Lookup("محرم", CategoryMonth, LanguageArabic); !ok {
		t.Error("Expected default vocabulary to survive override merge")
	}
}

func TestLoadWithOverridesAggregatesErrors(t *testing.T) {
	dir := t.TempDir()
	bad1 := "language: ar\nmonths:\n  badcal:\n    - number: 1\n      names: [x]\n"
	bad2 := "language: xx\n"
	if err := os.WriteFile(filepath.Join(dir, "bad1.yaml"), []byte(bad1), 0644); err != nil {
		t.Fatalf("writing pack: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad2.yaml"), []byte(bad2), 0644); err != nil {
		t.Fatalf("writing pack: %v", err)
	}

	_, err := LoadWithOverrides(dir)
	if err == nil {
		t.Fatal("Expected aggregated load error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "bad1.yaml") || !strings.Contains(msg, "bad2.yaml") {
		t.Errorf("Expected both pack failures in one error, got: %v", err)
	}
}

func TestLoadWithMissingDirectory(t *testing.T) {
	_, err := LoadWithOverrides("/nonexistent/keyword/packs")
	if err == nil {
		t.Fatal("Expected error for missing override directory")
	}
}
