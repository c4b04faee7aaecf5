package gonos

import (
	"fmt"

	"gonos/internal/fitness"
	"gonos/internal/model"
)

// CalculatorSpec is the declarative form of a fitness calculator. Function
// calculators are code, not data, so they have no spec form; build those
// through the fitness package directly.
type CalculatorSpec struct {
	Kind string `json:"kind"`

	Loci []int `json:"loci,omitempty"`

	// Map calculators: genotype key to fitness value, per-locus genotypes
	// joined with "|" and alleles within one locus with "-".
	Fitness map[string]float64 `json:"fitness,omitempty"`
	Phase   bool               `json:"phase,omitempty"`

	// Multi-allele calculators.
	Table    []float64      `json:"table,omitempty"`
	Wildtype []model.Allele `json:"wildtype,omitempty"`

	// Multi-locus calculators.
	Mode     string           `json:"mode,omitempty"`
	Children []CalculatorSpec `json:"children,omitempty"`
}

func (s CalculatorSpec) Build() (fitness.Calculator, error) {
	switch s.Kind {
	case "map":
		return fitness.NewMapCalculator(s.Loci, s.Fitness, s.Phase)
	case "multi_allele":
		return fitness.NewMultiAlleleCalculator(s.Loci, s.Table, s.Wildtype)
	case "multi_locus":
		if len(s.Children) == 0 {
			return nil, fmt.Errorf("multi_locus calculator requires children")
		}
		mode, err := modeFromName(s.Mode)
		if err != nil {
			return nil, err
		}
		calcs := make([]fitness.Calculator, len(s.Children))
		for i, child := range s.Children {
			built, err := child.Build()
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			calcs[i] = built
		}
		return fitness.NewMultiLocusCalculator(calcs, mode)
	case "":
		return nil, fmt.Errorf("calculator kind is required")
	default:
		return nil, fmt.Errorf("unsupported calculator kind: %s", s.Kind)
	}
}

func modeFromName(name string) (fitness.Mode, error) {
	switch name {
	case "", "multiplicative":
		return fitness.Multiplicative, nil
	case "additive":
		return fitness.Additive, nil
	default:
		return 0, fmt.Errorf("unsupported composition mode: %s", name)
	}
}
