// Package types provides the core domain types for date recognition:
// calendar systems, eras, parsed date components, and classified entities.
package types

// Calendar identifies one of the three supported calendar systems.
// The empty value means the calendar could not be established from
// the text; it is never guessed without vocabulary evidence or an
// explicit caller hint.
type Calendar string

const (
	CalendarUnknown   Calendar = ""
	CalendarGregorian Calendar = "gregorian"
	CalendarHijri     Calendar = "hijri"
	CalendarPersian   Calendar = "persian"
)

// Known reports whether the calendar has been established.
func (c Calendar) Known() bool {
	return c == CalendarGregorian || c == CalendarHijri || c == CalendarPersian
}

// Calendars lists the supported systems in canonical order.
func Calendars() []Calendar {
	return []Calendar{CalendarGregorian, CalendarHijri, CalendarPersian}
}

// Era classifies the epoch marker attached to a year. Years are stored
// unsigned; sign semantics apply only at display and interpretation.
type Era string

const (
	EraNone Era = ""
	EraCE   Era = "CE"
	EraBCE  Era = "BCE"
	EraAH   Era = "AH"
	EraSH   Era = "SH"
)

// Calendar returns the calendar system an era marker implies.
func (e Era) Calendar() Calendar {
	switch e {
	case EraCE, EraBCE:
		return CalendarGregorian
	case EraAH:
		return CalendarHijri
	case EraSH:
		return CalendarPersian
	default:
		return CalendarUnknown
	}
}

// Weekday names a day of the week. The empty value means no weekday
// was captured.
type Weekday string

const (
	WeekdayNone Weekday = ""
	Sunday      Weekday = "sunday"
	Monday      Weekday = "monday"
	Tuesday     Weekday = "tuesday"
	Wednesday   Weekday = "wednesday"
	Thursday    Weekday = "thursday"
	Friday      Weekday = "friday"
	Saturday    Weekday = "saturday"
)

var weekdayOrder = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Index returns the Sunday-based index 0-6, or -1 when unset.
func (w Weekday) Index() int {
	for i, d := range weekdayOrder {
		if d == w {
			return i
		}
	}
	return -1
}

// WeekdayFromIndex maps a Sunday-based index 0-6 to its Weekday.
func WeekdayFromIndex(i int) Weekday {
	if i < 0 || i >= len(weekdayOrder) {
		return WeekdayNone
	}
	return weekdayOrder[i]
}

// Precision grades how finely a date expression pins down time,
// coarsest first. Range-family entities render at PrecisionRange.
type Precision string

const (
	PrecisionNone                Precision = ""
	PrecisionCentury             Precision = "century"
	PrecisionYear                Precision = "year"
	PrecisionMonthYear           Precision = "month_year"
	PrecisionDayMonthYear        Precision = "day_month_year"
	PrecisionWeekdayDayMonthYear Precision = "weekday_day_month_year"
	PrecisionRange               Precision = "range"
)

// CenturyOf derives the century ordinal from a year. The formula is
// the same for all three calendars: ceil(year/100).
func CenturyOf(year int) int {
	if year <= 0 {
		return 0
	}
	return (year + 99) / 100
}
