package grammar

import (
	"strings"

	"github.com/muwaqqit/tarikh/pkg/types"
)

// FieldKind identifies what a capture group holds.
type FieldKind string

const (
	FieldDay     FieldKind = "day"
	FieldMonth   FieldKind = "month"
	FieldYear    FieldKind = "year"
	FieldWeekday FieldKind = "weekday"
	FieldEra     FieldKind = "era"
	FieldCentury FieldKind = "century"
)

// FieldRef ties one capture group to the date field and entity slot it
// populates. Optional groups may be empty in a match; a required slot
// field must be filled through at least one of its groups.
type FieldRef struct {
	Kind     FieldKind
	Slot     int
	Optional bool
}

// fragment is a partial regular expression paired with the field
// references of its capture groups, in group order. Fragments compose
// bottom-up into full patterns; only capture introduces groups, so the
// group order of a composed fragment always matches its field order.
type fragment struct {
	expr   string
	fields []FieldRef
}

func (f fragment) empty() bool { return f.expr == "" }

// lit wraps a fixed expression with no capture groups.
func lit(expr string) fragment { return fragment{expr: expr} }

// capture binds expr to a capture group holding kind at the start
// slot. Rebind with atSlot for the other slots.
func capture(kind FieldKind, expr string) fragment {
	if expr == "" {
		return fragment{}
	}
	return fragment{
		expr:   "(" + expr + ")",
		fields: []FieldRef{{Kind: kind, Slot: types.SlotStart}},
	}
}

// seq concatenates fragments, dropping empty ones.
func seq(parts ...fragment) fragment {
	var out fragment
	for _, p := range parts {
		if p.empty() {
			continue
		}
		out.expr += p.expr
		out.fields = append(out.fields, p.fields...)
	}
	return out
}

// opt makes a fragment optional. Its fields stay in the layout but no
// longer count toward the required slot fields.
func opt(f fragment) fragment {
	if f.empty() {
		return f
	}
	return fragment{expr: "(?:" + f.expr + ")?", fields: optionalFields(f.fields)}
}

// alt joins fragments as alternation branches in preference order.
// Branches are expected to capture the same slot fields, so the fields
// stay required; use anyOf for structurally different branches.
func alt(parts ...fragment) fragment {
	var branches []string
	var fields []FieldRef
	for _, p := range parts {
		if p.empty() {
			continue
		}
		branches = append(branches, p.expr)
		fields = append(fields, p.fields...)
	}
	switch len(branches) {
	case 0:
		return fragment{}
	case 1:
		return fragment{expr: branches[0], fields: fields}
	}
	return fragment{expr: "(?:" + strings.Join(branches, "|") + ")", fields: fields}
}

// anyOf is alternation over structurally different date forms. Which
// fields appear depends on the branch taken, so every field is marked
// optional and the resolver classifies from what was captured.
func anyOf(parts ...fragment) fragment {
	f := alt(parts...)
	f.fields = optionalFields(f.fields)
	return f
}

// atSlot rebinds every field of a fragment to one entity slot.
func atSlot(slot int, f fragment) fragment {
	fields := make([]FieldRef, len(f.fields))
	for i, fr := range f.fields {
		fr.Slot = slot
		fields[i] = fr
	}
	return fragment{expr: f.expr, fields: fields}
}

func optionalFields(fields []FieldRef) []FieldRef {
	out := make([]FieldRef, len(fields))
	for i, fr := range fields {
		fr.Optional = true
		out[i] = fr
	}
	return out
}
