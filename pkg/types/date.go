package types

// Span marks a half-open byte range [Start, End) in the original
// input text, before any script normalization.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Length returns the span width in bytes.
func (s Span) Length() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// ParsedDate holds the normalized components captured for one date
// mention. Zero-valued numeric fields mean the component was absent.
//
// Invariant: a record with Day set also carries Month and Year; a day
// without month and year is a parse defect and is demoted by the
// resolver when it cannot be completed from a paired slot.
type ParsedDate struct {
	Weekday Weekday `json:"weekday,omitempty"`
	Day     int     `json:"day,omitempty"`
	Month   int     `json:"month,omitempty"`
	Year    int     `json:"year,omitempty"`
	Century int     `json:"century,omitempty"`

	Era      Era      `json:"era,omitempty"`
	Calendar Calendar `json:"calendar,omitempty"`

	// Confidence score (0.0 to 1.0) for the normalization of this slot.
	Confidence float64 `json:"confidence"`

	// Approximate marks values produced by fallback paths such as
	// two-digit year expansion or out-of-table conversion.
	Approximate bool `json:"approximate,omitempty"`

	// CalendarInferred records that Calendar came from vocabulary
	// evidence or a caller hint rather than an explicit era marker.
	CalendarInferred bool `json:"calendar_inferred,omitempty"`

	// Position in the original source text.
	Span Span   `json:"span"`
	Raw  string `json:"raw,omitempty"`

	// Notes records degradations encountered while normalizing,
	// such as ignored extra era markers or unknown tokens kept raw.
	Notes []string `json:"notes,omitempty"`
}

// Empty reports whether no component at all was captured.
func (d ParsedDate) Empty() bool {
	return d.Day == 0 && d.Month == 0 && d.Year == 0 && d.Century == 0 &&
		d.Weekday == WeekdayNone && d.Era == EraNone
}

// Complete reports whether the slot is anchored in time on its own,
// meaning it carries at least a year or a century.
func (d ParsedDate) Complete() bool {
	return d.Year > 0 || d.Century > 0
}

// HasFullDate reports whether day, month and year are all present.
func (d ParsedDate) HasFullDate() bool {
	return d.Day > 0 && d.Month > 0 && d.Year > 0
}

// CenturyValue returns the stored century, or derives it from the
// year when absent.
func (d ParsedDate) CenturyValue() int {
	if d.Century > 0 {
		return d.Century
	}
	return CenturyOf(d.Year)
}

// Precision grades the slot by its finest populated component.
func (d ParsedDate) Precision() Precision {
	switch {
	case d.HasFullDate() && d.Weekday != WeekdayNone:
		return PrecisionWeekdayDayMonthYear
	case d.HasFullDate():
		return PrecisionDayMonthYear
	case d.Month > 0 && d.Year > 0:
		return PrecisionMonthYear
	case d.Year > 0:
		return PrecisionYear
	case d.Century > 0:
		return PrecisionCentury
	default:
		return PrecisionNone
	}
}

// FieldCount counts populated components, used by the deduplicator's
// keep-most-complete policy.
func (d ParsedDate) FieldCount() int {
	n := 0
	if d.Weekday != WeekdayNone {
		n++
	}
	if d.Day > 0 {
		n++
	}
	if d.Month > 0 {
		n++
	}
	if d.Year > 0 {
		n++
	}
	if d.Century > 0 {
		n++
	}
	if d.Era != EraNone {
		n++
	}
	if d.Calendar.Known() {
		n++
	}
	return n
}
