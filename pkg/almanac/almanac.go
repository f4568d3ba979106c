// Package almanac maps dates between the Gregorian, Hijri, and Persian
// solar calendars through a day-by-day table. The table is generated
// arithmetically for a configurable Gregorian span and can be replaced
// by a loaded file when an observational almanac is available; dates
// outside the table fall back to arithmetic, marked approximate by the
// caller.
package almanac

import (
	"fmt"

	"github.com/muwaqqit/tarikh/pkg/types"
)

// Date is one calendar date. Which calendar it belongs to is carried
// alongside, never inside, so the same value type serves all three.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Row is one day of the mapping table.
type Row struct {
	JDN       int
	Gregorian Date
	Hijri     Date
	Persian   Date
	Weekday   types.Weekday
}

func (r Row) date(cal types.Calendar) (Date, bool) {
	switch cal {
	case types.CalendarGregorian:
		return r.Gregorian, true
	case types.CalendarHijri:
		return r.Hijri, true
	case types.CalendarPersian:
		return r.Persian, true
	}
	return Date{}, false
}

// Options bound the generated table by Gregorian year.
type Options struct {
	StartYear int
	EndYear   int
}

// The default span tracks the years published civil almanacs cover,
// roughly Hijri 1356 through 1500.
const (
	DefaultStartYear = 1938
	DefaultEndYear   = 2077
)

// Service answers conversion, weekday, and day-number queries against
// an immutable table.
type Service struct {
	rows   []Row
	byDate map[types.Calendar]map[Date]int
}

// New generates the mapping table for a Gregorian year range. Zero
// options mean the default span.
func New(opts Options) (*Service, error) {
	if opts.StartYear == 0 {
		opts.StartYear = DefaultStartYear
	}
	if opts.EndYear == 0 {
		opts.EndYear = DefaultEndYear
	}
	if opts.EndYear < opts.StartYear {
		return nil, fmt.Errorf("almanac range %d-%d is inverted", opts.StartYear, opts.EndYear)
	}

	first := gregorianToJDN(opts.StartYear, 1, 1)
	last := gregorianToJDN(opts.EndYear, 12, 31)
	rows := make([]Row, 0, last-first+1)
	for jdn := first; jdn <= last; jdn++ {
		rows = append(rows, rowFor(jdn))
	}
	return newService(rows)
}

func rowFor(jdn int) Row {
	gy, gm, gd := jdnToGregorian(jdn)
	hy, hm, hd := jdnToHijri(jdn)
	py, pm, pd := jdnToPersian(jdn)
	return Row{
		JDN:       jdn,
		Gregorian: Date{Year: gy, Month: gm, Day: gd},
		Hijri:     Date{Year: hy, Month: hm, Day: hd},
		Persian:   Date{Year: py, Month: pm, Day: pd},
		Weekday:   jdnWeekday(jdn),
	}
}

func newService(rows []Row) (*Service, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("almanac has no rows")
	}
	s := &Service{
		rows: rows,
		byDate: map[types.Calendar]map[Date]int{
			types.CalendarGregorian: make(map[Date]int, len(rows)),
			types.CalendarHijri:     make(map[Date]int, len(rows)),
			types.CalendarPersian:   make(map[Date]int, len(rows)),
		},
	}
	for i, r := range rows {
		s.byDate[types.CalendarGregorian][r.Gregorian] = i
		s.byDate[types.CalendarHijri][r.Hijri] = i
		s.byDate[types.CalendarPersian][r.Persian] = i
	}
	return s, nil
}

func (s *Service) row(d Date, cal types.Calendar) (Row, bool) {
	m, ok := s.byDate[cal]
	if !ok {
		return Row{}, false
	}
	i, ok := m[d]
	if !ok {
		return Row{}, false
	}
	return s.rows[i], true
}

// Convert maps d between calendars through the table. A miss means the
// date is invalid or outside the covered span; it is a normal outcome,
// not an error. Use ConvertApprox for a best-effort answer beyond the
// table.
func (s *Service) Convert(d Date, from, to types.Calendar) (Date, bool) {
	r, ok := s.row(d, from)
	if !ok {
		return Date{}, false
	}
	return r.date(to)
}

// ConvertApprox converts by arithmetic alone, with no table bound. The
// civil Hijri reckoning can drift a day or two from observational
// almanacs.
func ConvertApprox(d Date, from, to types.Calendar) (Date, bool) {
	jdn, ok := dateToJDN(d, from)
	if !ok {
		return Date{}, false
	}
	return jdnToDate(jdn, to)
}

// JDN returns the day number of d through the table.
func (s *Service) JDN(d Date, cal types.Calendar) (int, bool) {
	r, ok := s.row(d, cal)
	if !ok {
		return 0, false
	}
	return r.JDN, true
}

// ApproxJDN returns the day number of d by arithmetic alone.
func ApproxJDN(d Date, cal types.Calendar) (int, bool) {
	return dateToJDN(d, cal)
}

// Weekday returns the weekday of d, from the table when covered and by
// arithmetic otherwise. The two always agree for Gregorian and Persian
// dates; a loaded observational table may shift Hijri dates.
func (s *Service) Weekday(d Date, cal types.Calendar) (types.Weekday, bool) {
	if r, ok := s.row(d, cal); ok {
		return r.Weekday, true
	}
	if jdn, ok := dateToJDN(d, cal); ok {
		return jdnWeekday(jdn), true
	}
	return types.Weekday(""), false
}

// YearSpan returns the first and last day numbers of a calendar year,
// by arithmetic so it also works outside the table.
func YearSpan(year int, cal types.Calendar) (int, int, bool) {
	lo, ok := dateToJDN(Date{Year: year, Month: 1, Day: 1}, cal)
	if !ok {
		return 0, 0, false
	}
	hi, ok := dateToJDN(Date{Year: year + 1, Month: 1, Day: 1}, cal)
	if !ok {
		return 0, 0, false
	}
	return lo, hi - 1, true
}

// Len reports the number of days covered.
func (s *Service) Len() int { return len(s.rows) }

// Range returns the Gregorian endpoints of the table.
func (s *Service) Range() (Date, Date) {
	return s.rows[0].Gregorian, s.rows[len(s.rows)-1].Gregorian
}

// Rows exposes the table for serialization. Callers must not mutate
// the returned slice.
func (s *Service) Rows() []Row { return s.rows }
