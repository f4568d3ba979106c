package almanac

import (
	"time"

	ptime "github.com/yaa110/go-persian-calendar"

	"github.com/muwaqqit/tarikh/pkg/types"
)

// Day number arithmetic. The Gregorian conversion is the classic
// Fliegel-Van Flandern algorithm. The Hijri one is the tabular civil
// calendar on the Friday epoch, day number 1948440 for 1 Muharram of
// year 1; printed almanacs drift a day or two around it, which is why
// observational tables can be loaded over the built-in rows. The
// Persian side delegates to go-persian-calendar.

const hijriEpoch = 1948440

func gregorianToJDN(y, m, d int) int {
	a := (14 - m) / 12
	yy := y + 4800 - a
	mm := m + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}

func jdnToGregorian(jdn int) (int, int, int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	e := (4*c + 3) / 1461
	f := c - 1461*e/4
	g := (5*f + 2) / 153
	day := f - (153*g+2)/5 + 1
	month := g + 3 - 12*(g/10)
	year := 100*b + e - 4800 + g/10
	return year, month, day
}

func hijriToJDN(y, m, d int) int {
	return (11*y+3)/30 + 354*y + 30*m - (m-1)/2 + d + hijriEpoch - 385
}

func jdnToHijri(jdn int) (int, int, int) {
	y := (30*(jdn-hijriEpoch) + 10646) / 10631
	doy := jdn - hijriToJDN(y, 1, 1) + 1
	m := (2*(doy-1))/59 + 1
	if m > 12 {
		m = 12
	}
	d := doy - (30*(m-1) - (m-1)/2)
	return y, m, d
}

func persianToJDN(y, m, d int) (int, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, false
	}
	pt := ptime.Date(y, ptime.Month(m), d, 12, 0, 0, 0, time.UTC)
	gy, gm, gd := pt.Time().Date()
	jdn := gregorianToJDN(gy, int(gm), gd)
	// The round trip rejects normalized overflow days such as a 30th
	// of Esfand in a common year.
	ry, rm, rd := jdnToPersian(jdn)
	if ry != y || rm != m || rd != d {
		return 0, false
	}
	return jdn, true
}

func jdnToPersian(jdn int) (int, int, int) {
	gy, gm, gd := jdnToGregorian(jdn)
	pt := ptime.New(time.Date(gy, time.Month(gm), gd, 12, 0, 0, 0, time.UTC))
	return pt.Year(), int(pt.Month()), pt.Day()
}

func jdnWeekday(jdn int) types.Weekday {
	return types.WeekdayFromIndex((jdn + 1) % 7)
}

// dateToJDN validates d in its calendar and returns its day number.
// Round-tripping catches days that do not exist, like 30 February or
// the 30th of a 29-day Hijri month.
func dateToJDN(d Date, cal types.Calendar) (int, bool) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return 0, false
	}
	switch cal {
	case types.CalendarGregorian:
		jdn := gregorianToJDN(d.Year, d.Month, d.Day)
		if y, m, dd := jdnToGregorian(jdn); y != d.Year || m != d.Month || dd != d.Day {
			return 0, false
		}
		return jdn, true
	case types.CalendarHijri:
		jdn := hijriToJDN(d.Year, d.Month, d.Day)
		if y, m, dd := jdnToHijri(jdn); y != d.Year || m != d.Month || dd != d.Day {
			return 0, false
		}
		return jdn, true
	case types.CalendarPersian:
		return persianToJDN(d.Year, d.Month, d.Day)
	}
	return 0, false
}

func jdnToDate(jdn int, cal types.Calendar) (Date, bool) {
	switch cal {
	case types.CalendarGregorian:
		y, m, d := jdnToGregorian(jdn)
		return Date{Year: y, Month: m, Day: d}, true
	case types.CalendarHijri:
		y, m, d := jdnToHijri(jdn)
		return Date{Year: y, Month: m, Day: d}, true
	case types.CalendarPersian:
		y, m, d := jdnToPersian(jdn)
		return Date{Year: y, Month: m, Day: d}, true
	}
	return Date{}, false
}
