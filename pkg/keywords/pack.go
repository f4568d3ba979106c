package keywords

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/muwaqqit/tarikh/pkg/types"
)

//go:embed data/*.yaml
var defaultPacks embed.FS

// Pack is the YAML schema of one vocabulary file. One pack covers one
// language; several packs for the same language merge additively.
type Pack struct {
	Language string                  `yaml:"language"`
	Months   map[string][]MonthEntry `yaml:"months"`
	Eras     []EraEntry              `yaml:"eras"`
	Weekdays []WeekdayEntry          `yaml:"weekdays"`
	Ordinals []OrdinalEntry          `yaml:"ordinals"`

	// Connectors maps a connector kind (range_start, range_end,
	// alternative, year_word, day_word, century_word) to its variants.
	Connectors map[string][]string `yaml:"connectors"`
}

// MonthEntry declares one month and its surface variants.
type MonthEntry struct {
	Number int      `yaml:"number"`
	Label  string   `yaml:"label"`
	Names  []string `yaml:"names"`
}

// EraEntry declares one era marker set.
type EraEntry struct {
	Era   string   `yaml:"era"`
	Names []string `yaml:"names"`
}

// WeekdayEntry declares one weekday name set.
type WeekdayEntry struct {
	Day   string   `yaml:"day"`
	Names []string `yaml:"names"`
}

// OrdinalEntry declares the word forms of one number.
type OrdinalEntry struct {
	Value int      `yaml:"value"`
	Names []string `yaml:"names"`
}

// Load parses the embedded default packs into immutable Tables.
func Load() (*Tables, error) {
	return LoadWithOverrides("")
}

// LoadWithOverrides loads the embedded defaults and then merges every
// YAML pack found in dir on top. All parse and validation failures are
// collected and reported in one error; a partially loaded table is
// never returned.
func LoadWithOverrides(dir string) (*Tables, error) {
	t := &Tables{
		langs:       map[Language]*languageTable{},
		monthLabels: map[types.Calendar]*[12]string{},
	}

	var loadErrors []string

	entries, err := defaultPacks.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("reading embedded packs: %w", err)
	}
	for _, entry := range entries {
		data, err := defaultPacks.ReadFile("data/" + entry.Name())
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if errs := t.mergePack(data); len(errs) > 0 {
			for _, e := range errs {
				loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), e))
			}
		}
	}

	if dir != "" {
		dirErrors, err := t.loadDirectory(dir)
		if err != nil {
			return nil, err
		}
		loadErrors = append(loadErrors, dirErrors...)
	}

	if len(loadErrors) > 0 {
		return nil, fmt.Errorf("errors loading keyword packs: %s", strings.Join(loadErrors, "; "))
	}

	t.finalize()
	return t, nil
}

func (t *Tables) loadDirectory(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("keyword pack directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if errs := t.mergePack(data); len(errs) > 0 {
			for _, e := range errs {
				loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, e))
			}
		}
	}
	return loadErrors, nil
}

// mergePack parses one YAML pack and merges its entries, returning
// every validation failure instead of stopping at the first.
func (t *Tables) mergePack(data []byte) []error {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return []error{fmt.Errorf("parsing YAML: %w", err)}
	}

	lang := Language(p.Language)
	if !lang.Valid() {
		return []error{fmt.Errorf("unknown language %q", p.Language)}
	}

	lt, ok := t.langs[lang]
	if !ok {
		lt = newLanguageTable()
		t.langs[lang] = lt
	}

	var errs []error

	for calName, months := range p.Months {
		cal := types.Calendar(calName)
		if !cal.Known() {
			errs = append(errs, fmt.Errorf("unknown calendar %q", calName))
			continue
		}
		for _, m := range months {
			if m.Number < 1 || m.Number > 12 {
				errs = append(errs, fmt.Errorf("calendar %s: month number %d out of range", cal, m.Number))
				continue
			}
			if m.Label != "" {
				labels, ok := t.monthLabels[cal]
				if !ok {
					labels = &[12]string{}
					t.monthLabels[cal] = labels
				}
				labels[m.Number-1] = m.Label
			}
			key := Key{
				Category:  CategoryMonth,
				Canonical: m.Label,
				Value:     m.Number,
				Calendar:  cal,
			}
			for _, name := range m.Names {
				if err := lt.add(CategoryMonth, name, key, func() {
					lt.months[cal] = append(lt.months[cal], FoldKey(name))
				}); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	for _, e := range p.Eras {
		era := types.Era(e.Era)
		cal := era.Calendar()
		if cal == types.CalendarUnknown {
			errs = append(errs, fmt.Errorf("unknown era %q", e.Era))
			continue
		}
		key := Key{Category: CategoryEra, Era: era, Calendar: cal}
		for _, name := range e.Names {
			if err := lt.add(CategoryEra, name, key, func() {
				lt.eras[cal] = append(lt.eras[cal], FoldKey(name))
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, w := range p.Weekdays {
		day := types.Weekday(w.Day)
		if day.Index() < 0 {
			errs = append(errs, fmt.Errorf("unknown weekday %q", w.Day))
			continue
		}
		key := Key{
			Category:  CategoryWeekday,
			Canonical: WeekdayLabel(day),
			Value:     day.Index(),
			Weekday:   day,
		}
		for _, name := range w.Names {
			if err := lt.add(CategoryWeekday, name, key, func() {
				lt.weekdays = append(lt.weekdays, FoldKey(name))
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, o := range p.Ordinals {
		if o.Value < 1 {
			errs = append(errs, fmt.Errorf("ordinal value %d out of range", o.Value))
			continue
		}
		key := Key{Category: CategoryOrdinal, Value: o.Value}
		for _, name := range o.Names {
			value := o.Value
			if err := lt.add(CategoryOrdinal, name, key, func() {
				lt.ordinals = append(lt.ordinals, ordinalVariant{token: FoldKey(name), value: value})
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for kindName, names := range p.Connectors {
		kind := ConnectorKind(kindName)
		valid := false
		for _, k := range connectorKinds {
			if k == kind {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, fmt.Errorf("unknown connector kind %q", kindName))
			continue
		}
		key := Key{Category: CategoryConnector, Connector: kind}
		for _, name := range names {
			if err := lt.add(CategoryConnector, name, key, func() {
				lt.connectors[kind] = append(lt.connectors[kind], FoldKey(name))
			}); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errs
}

// add registers one folded token, running record only for previously
// unseen tokens. A token that already resolves to a different key is a
// pack conflict and fails.
func (lt *languageTable) add(cat Category, name string, key Key, record func()) error {
	folded := FoldKey(name)
	if folded == "" {
		return fmt.Errorf("%s entry %q folds to empty string", cat, name)
	}
	if existing, ok := lt.lookup[cat][folded]; ok {
		if existing != key {
			return fmt.Errorf("%s token %q already mapped to a different value", cat, name)
		}
		return nil
	}
	lt.lookup[cat][folded] = key
	record()
	return nil
}

// finalize orders every variant list longest first so alternations
// prefer the most specific surface form.
func (t *Tables) finalize() {
	for _, lt := range t.langs {
		for cal := range lt.months {
			sortVariants(lt.months[cal])
		}
		lt.erasAll = lt.erasAll[:0]
		for _, cal := range types.Calendars() {
			sortVariants(lt.eras[cal])
			lt.erasAll = append(lt.erasAll, lt.eras[cal]...)
		}
		sortVariants(lt.erasAll)
		sortVariants(lt.weekdays)
		for kind := range lt.connectors {
			sortVariants(lt.connectors[kind])
		}
		sortOrdinals(lt.ordinals)
	}
}
