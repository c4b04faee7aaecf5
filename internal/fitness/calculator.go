// Package fitness assigns per-individual fitness values over selected
// (virtual) subpopulations. Calculators score one individual; the Operator
// walks a selection list through the vsp activation protocol and writes the
// scores into an information field for mating schemes to consume.
package fitness

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonos/internal/model"
)

// GenotypeReader is the slice of the storage layer calculators need.
type GenotypeReader interface {
	Ploidy() int
	NumLoci() int
	Allele(subPop, ind, locus, slot int) model.Allele
}

// Calculator scores a single individual.
type Calculator interface {
	IndFitness(r GenotypeReader, subPop, ind, gen int) (float64, error)
}

// MapCalculator looks the fitness value up by genotype string. Keys are
// formed per locus by joining the alleles of each ploidy slot with "-", loci
// joined with "|" (e.g. "0-1|1-1"). Without phase, alleles within each locus
// are sorted ascending before lookup, so keys must use the ascending form.
type MapCalculator struct {
	loci    []int
	fitness map[string]float64
	phase   bool
}

func NewMapCalculator(loci []int, fitness map[string]float64, phase bool) (*MapCalculator, error) {
	if len(loci) == 0 {
		return nil, fmt.Errorf("at least one locus is required")
	}
	if len(fitness) == 0 {
		return nil, fmt.Errorf("fitness map is empty")
	}
	return &MapCalculator{
		loci:    append([]int(nil), loci...),
		fitness: fitness,
		phase:   phase,
	}, nil
}

func (c *MapCalculator) IndFitness(r GenotypeReader, subPop, ind, gen int) (float64, error) {
	parts := make([]string, len(c.loci))
	alleles := make([]model.Allele, r.Ploidy())
	for i, locus := range c.loci {
		for slot := range alleles {
			alleles[slot] = r.Allele(subPop, ind, locus, slot)
		}
		if !c.phase {
			sort.Slice(alleles, func(a, b int) bool { return alleles[a] < alleles[b] })
		}
		slots := make([]string, len(alleles))
		for slot, a := range alleles {
			slots[slot] = fmt.Sprintf("%d", a)
		}
		parts[i] = strings.Join(slots, "-")
	}
	key := strings.Join(parts, "|")
	f, ok := c.fitness[key]
	if !ok {
		return 0, fmt.Errorf("no fitness value for genotype %q", key)
	}
	return f, nil
}

// MultiAlleleCalculator splits alleles into a wildtype group and disease
// alleles and scores by the count of disease alleles at each locus. The
// fitness table has 3^len(loci) entries ordered with the first locus as the
// slowest digit (AABB, AABb, AAbb, AaBB, ...). Diploid populations only.
type MultiAlleleCalculator struct {
	loci     []int
	fitness  []float64
	wildtype map[model.Allele]struct{}
}

func NewMultiAlleleCalculator(loci []int, fitness []float64, wildtype []model.Allele) (*MultiAlleleCalculator, error) {
	if len(loci) == 0 {
		return nil, fmt.Errorf("at least one locus is required")
	}
	want := 1
	for range loci {
		want *= 3
	}
	if len(fitness) != want {
		return nil, fmt.Errorf("fitness table has %d entries, want 3^%d = %d for every genotype combination",
			len(fitness), len(loci), want)
	}
	if len(wildtype) == 0 {
		wildtype = []model.Allele{0}
	}
	wt := make(map[model.Allele]struct{}, len(wildtype))
	for _, a := range wildtype {
		wt[a] = struct{}{}
	}
	return &MultiAlleleCalculator{
		loci:     append([]int(nil), loci...),
		fitness:  append([]float64(nil), fitness...),
		wildtype: wt,
	}, nil
}

func (c *MultiAlleleCalculator) IndFitness(r GenotypeReader, subPop, ind, gen int) (float64, error) {
	if r.Ploidy() != 2 {
		return 0, fmt.Errorf("multi-allele fitness requires a diploid population, got ploidy %d", r.Ploidy())
	}
	idx := 0
	for _, locus := range c.loci {
		diseased := 0
		for slot := 0; slot < 2; slot++ {
			if _, ok := c.wildtype[r.Allele(subPop, ind, locus, slot)]; !ok {
				diseased++
			}
		}
		idx = idx*3 + diseased
	}
	return c.fitness[idx], nil
}

// Mode selects how MultiLocusCalculator composes child fitness values.
type Mode int

const (
	// Multiplicative composes f = prod(f_i).
	Multiplicative Mode = iota
	// Additive composes f = max(0, 1 - sum(1 - f_i)).
	Additive
)

// MultiLocusCalculator composes several calculators into one score.
type MultiLocusCalculator struct {
	calcs []Calculator
	mode  Mode
}

func NewMultiLocusCalculator(calcs []Calculator, mode Mode) (*MultiLocusCalculator, error) {
	if len(calcs) == 0 {
		return nil, fmt.Errorf("at least one calculator is required")
	}
	if mode != Multiplicative && mode != Additive {
		return nil, fmt.Errorf("unknown composition mode %d", mode)
	}
	for i, calc := range calcs {
		if calc == nil {
			return nil, fmt.Errorf("calculator %d is nil", i)
		}
		if _, nested := calc.(*MultiLocusCalculator); nested {
			return nil, fmt.Errorf("multi-locus calculators cannot be nested")
		}
	}
	return &MultiLocusCalculator{calcs: append([]Calculator(nil), calcs...), mode: mode}, nil
}

func (c *MultiLocusCalculator) IndFitness(r GenotypeReader, subPop, ind, gen int) (float64, error) {
	switch c.mode {
	case Multiplicative:
		f := 1.0
		for _, calc := range c.calcs {
			fi, err := calc.IndFitness(r, subPop, ind, gen)
			if err != nil {
				return 0, err
			}
			f *= fi
		}
		return f, nil
	default:
		deficit := 0.0
		for _, calc := range c.calcs {
			fi, err := calc.IndFitness(r, subPop, ind, gen)
			if err != nil {
				return 0, err
			}
			deficit += 1 - fi
		}
		return math.Max(0, 1-deficit), nil
	}
}

// FuncCalculator scores with a user-supplied function over the individual's
// alleles at the given loci, passed locus-major (locus 0 slot 0, locus 0
// slot 1, locus 1 slot 0, ...).
type FuncCalculator struct {
	loci []int
	fn   func(alleles []model.Allele, gen int) (float64, error)
}

func NewFuncCalculator(loci []int, fn func(alleles []model.Allele, gen int) (float64, error)) (*FuncCalculator, error) {
	if len(loci) == 0 {
		return nil, fmt.Errorf("at least one locus is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("fitness function is required")
	}
	return &FuncCalculator{loci: append([]int(nil), loci...), fn: fn}, nil
}

func (c *FuncCalculator) IndFitness(r GenotypeReader, subPop, ind, gen int) (float64, error) {
	alleles := make([]model.Allele, 0, len(c.loci)*r.Ploidy())
	for _, locus := range c.loci {
		for slot := 0; slot < r.Ploidy(); slot++ {
			alleles = append(alleles, r.Allele(subPop, ind, locus, slot))
		}
	}
	return c.fn(alleles, gen)
}
