package types

// Relation classifies how the slots of an entity relate to each other.
type Relation string

const (
	RelationUnknown            Relation = "unknown"
	RelationSimple             Relation = "simple"
	RelationRange              Relation = "range"
	RelationAlternativeForm    Relation = "alternative_form"
	RelationFinancialYear      Relation = "financial_year"
	RelationComplexRange       Relation = "complex_range"
	RelationComplexAlternative Relation = "complex_alternative"
	RelationComplexFinancial   Relation = "complex_financial"
)

// RangeLike reports whether the relation spans two points in time.
func (r Relation) RangeLike() bool {
	switch r {
	case RelationRange, RelationFinancialYear, RelationComplexRange, RelationComplexFinancial:
		return true
	default:
		return false
	}
}

// Complexity grades the structural completeness of an entity.
type Complexity string

const (
	ComplexityComponent Complexity = "component"
	ComplexitySimple    Complexity = "simple"
	ComplexityComposite Complexity = "composite"
	ComplexityComplex   Complexity = "complex"
)

// Entity slot indexes, in the order SlotRoles names them. Pattern
// layouts address slots by these indexes; corrections and renderings
// use the role names from SlotRole.
const (
	SlotStart = iota
	SlotStartAlt
	SlotEnd
	SlotEndAlt
)

// SlotRoles lists the slot role names in index order.
func SlotRoles() []string {
	return []string{"start", "start_alt", "end", "end_alt"}
}

// SlotRole names a slot index, or returns "" for an invalid one.
func SlotRole(slot int) string {
	roles := SlotRoles()
	if slot < 0 || slot >= len(roles) {
		return ""
	}
	return roles[slot]
}

// Correction is the audit record of one automatic repair made during
// validation, such as year propagation between range sides or an
// alternative-calendar slot nudged onto its exact conversion.
type Correction struct {
	Slot   string `json:"slot"`
	Field  string `json:"field"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// DedupPolicy selects which of two near-duplicate entities survives.
type DedupPolicy string

const (
	KeepFirst        DedupPolicy = "keep_first"
	KeepMostComplete DedupPolicy = "keep_most_complete"
)

// Valid reports whether the policy is one of the recognized values.
func (p DedupPolicy) Valid() bool {
	return p == KeepFirst || p == KeepMostComplete
}

// Entity is one classified date mention assembled from one to four
// parsed slots. Created by the resolver, corrected at most once during
// validation, and read-only afterwards.
type Entity struct {
	// Slots. Start is always present; the others depend on the
	// relation: End for ranges, StartAlt for alternative forms,
	// all four for compounds.
	Start    ParsedDate  `json:"start"`
	StartAlt *ParsedDate `json:"start_alt,omitempty"`
	End      *ParsedDate `json:"end,omitempty"`
	EndAlt   *ParsedDate `json:"end_alt,omitempty"`

	Relation   Relation   `json:"relation"`
	Complexity Complexity `json:"complexity"`

	// Corrections lists automatic repairs applied during validation.
	Corrections []Correction `json:"corrections,omitempty"`

	// Invalid marks an alternative-form pair whose two calendars
	// disagree beyond tolerance. The entity is kept, never dropped.
	Invalid bool `json:"invalid,omitempty"`

	// Position in source text.
	Span Span   `json:"span"`
	Raw  string `json:"raw"`

	// Rendered is the human-readable form chosen from the template
	// table keyed by precision and calendar combination.
	Rendered string `json:"rendered,omitempty"`
}

// Slot returns the slot for an index, or nil when absent.
func (e *Entity) Slot(slot int) *ParsedDate {
	switch slot {
	case SlotStart:
		return &e.Start
	case SlotStartAlt:
		return e.StartAlt
	case SlotEnd:
		return e.End
	case SlotEndAlt:
		return e.EndAlt
	default:
		return nil
	}
}

// Slots returns the populated slots in role order.
func (e *Entity) Slots() []*ParsedDate {
	out := []*ParsedDate{&e.Start}
	if e.StartAlt != nil {
		out = append(out, e.StartAlt)
	}
	if e.End != nil {
		out = append(out, e.End)
	}
	if e.EndAlt != nil {
		out = append(out, e.EndAlt)
	}
	return out
}

// SlotCount returns how many slots are populated.
func (e *Entity) SlotCount() int {
	return len(e.Slots())
}

// Calendars returns the distinct known calendars across slots, in
// canonical order.
func (e *Entity) Calendars() []Calendar {
	seen := map[Calendar]bool{}
	for _, s := range e.Slots() {
		if s.Calendar.Known() {
			seen[s.Calendar] = true
		}
	}
	var out []Calendar
	for _, c := range Calendars() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// Precision grades the entity for rendering: range-family relations
// use PrecisionRange, everything else the start slot's precision.
func (e *Entity) Precision() Precision {
	if e.Relation.RangeLike() {
		return PrecisionRange
	}
	return e.Start.Precision()
}

// FieldCount sums populated fields across slots, used by the
// deduplicator's keep-most-complete policy.
func (e *Entity) FieldCount() int {
	n := 0
	for _, s := range e.Slots() {
		n += s.FieldCount()
	}
	return n
}
