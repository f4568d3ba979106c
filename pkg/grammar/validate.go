package grammar

import (
	"fmt"

	"github.com/muwaqqit/tarikh/pkg/keywords"
	"github.com/muwaqqit/tarikh/pkg/types"
)

// kindSlots are the entity slots each structural family may populate.
var kindSlots = map[PatternKind][]int{
	KindSingle:      {types.SlotStart},
	KindPair:        {types.SlotStart, types.SlotEnd},
	KindAlternative: {types.SlotStart, types.SlotStartAlt},
	KindCompound:    {types.SlotStart, types.SlotStartAlt, types.SlotEnd, types.SlotEndAlt},
}

// check runs the post-build validation pass over the whole set and
// returns every failure as one message.
func (s *Set) check() []string {
	var problems []string
	if len(s.patterns) == 0 {
		problems = append(problems, "no patterns built")
	}
	for _, p := range s.patterns {
		if p.re == nil {
			// compile already reported it
			continue
		}
		problems = append(problems, p.check()...)
	}
	return problems
}

func (p *Pattern) check() []string {
	var problems []string

	if p.Priority <= 0 {
		problems = append(problems, fmt.Sprintf("%s: priority %d out of band", p.Name, p.Priority))
	}
	if len(p.layout) == 0 {
		problems = append(problems, fmt.Sprintf("%s: no capture groups", p.Name))
	}
	allowed := map[int]bool{}
	for _, slot := range kindSlots[p.Kind] {
		allowed[slot] = true
	}
	for _, f := range p.layout {
		if !allowed[f.Slot] {
			problems = append(problems, fmt.Sprintf("%s: slot %d not valid for %s patterns", p.Name, f.Slot, p.Kind))
			break
		}
	}
	if len(p.Examples) == 0 {
		problems = append(problems, fmt.Sprintf("%s: no examples", p.Name))
	}

	for _, example := range p.Examples {
		folded := keywords.Fold(example)
		m := p.re.FindStringSubmatchIndex(folded)
		switch {
		case m == nil:
			problems = append(problems, fmt.Sprintf("%s: example %q does not match", p.Name, example))
		case m[0] != 0 || m[1] != len(folded):
			problems = append(problems, fmt.Sprintf("%s: example %q only matches %q", p.Name, example, folded[m[0]:m[1]]))
		default:
			for _, sf := range p.required {
				if !groupFilled(p.layout, m, sf) {
					problems = append(problems, fmt.Sprintf("%s: example %q leaves %s of slot %d empty", p.Name, example, sf.Kind, sf.Slot))
				}
			}
		}
	}
	return problems
}

// groupFilled reports whether any capture group feeding the slot field
// is non-empty in the match.
func groupFilled(layout []FieldRef, m []int, sf SlotField) bool {
	for i, f := range layout {
		if f.Slot != sf.Slot || f.Kind != sf.Kind {
			continue
		}
		lo, hi := m[2*(i+1)], m[2*(i+1)+1]
		if lo >= 0 && hi > lo {
			return true
		}
	}
	return false
}
