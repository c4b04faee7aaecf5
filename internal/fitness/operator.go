package fitness

import (
	"fmt"

	"gonos/internal/pop"
	"gonos/internal/vsp"
)

// DefaultField is the information field fitness values are written to.
const DefaultField = "fitness"

// Operator applies a calculator to every individual of the selected
// (virtual) subpopulations before mating. Selection itself happens in the
// mating scheme; the operator only records ability-to-mate scores.
type Operator struct {
	calc    Calculator
	field   string
	subPops vsp.List
}

func NewOperator(calc Calculator, field string, subPops vsp.List) (*Operator, error) {
	if calc == nil {
		return nil, fmt.Errorf("calculator is required")
	}
	if field == "" {
		field = DefaultField
	}
	return &Operator{calc: calc, field: field, subPops: subPops}, nil
}

// Apply expands the selection against the population's current shape, then
// activates each entry, scores the visible individuals and deactivates
// before moving on. Overlapping VSPs are scored more than once; the last
// write wins.
func (o *Operator) Apply(p *pop.Population, gen int) error {
	idx, err := p.InfoIdx(o.field)
	if err != nil {
		return fmt.Errorf("fitness field: %w", err)
	}
	expanded, err := o.subPops.Expand(p)
	if err != nil {
		return err
	}
	for _, handle := range expanded.Handles() {
		act, err := vsp.Begin(p, p.Splitter(), handle)
		if err != nil {
			return err
		}
		for _, ind := range p.VisibleIndices(handle.SubPop()) {
			f, err := o.calc.IndFitness(p, handle.SubPop(), ind, gen)
			if err != nil {
				_ = act.Close()
				return fmt.Errorf("individual (%d, %d): %w", handle.SubPop(), ind, err)
			}
			p.SetInfoAt(handle.SubPop(), ind, idx, f)
		}
		if err := act.Close(); err != nil {
			return err
		}
	}
	return nil
}
