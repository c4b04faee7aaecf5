// Package stats summarizes (virtual) subpopulations: counts, information
// field moments and per-locus allele frequencies. Summaries run through the
// vsp activation protocol, so they see exactly what mating schemes see.
package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"gonos/internal/model"
	"gonos/internal/pop"
	"gonos/internal/vsp"
)

// FieldSummary holds the moments of one information field over a slice.
type FieldSummary struct {
	Field  string
	Mean   float64
	StdDev float64
}

// AlleleFrequency maps allele value to relative frequency at one locus.
type AlleleFrequency struct {
	Locus       int
	Frequencies map[model.Allele]float64
}

// VSPSummary describes one (virtual) subpopulation.
type VSPSummary struct {
	ID       vsp.ID
	Name     string
	Size     int
	Males    int
	Affected int
	Fields   []FieldSummary
	Alleles  []AlleleFrequency
}

// Summarize activates id, walks the visible individuals and restores
// visibility before returning.
func Summarize(p *pop.Population, id vsp.ID) (VSPSummary, error) {
	name, err := p.SubPopName(id)
	if err != nil {
		return VSPSummary{}, err
	}
	act, err := vsp.Begin(p, p.Splitter(), id)
	if err != nil {
		return VSPSummary{}, err
	}
	defer func() { _ = act.Close() }()

	visible := p.VisibleIndices(id.SubPop())
	summary := VSPSummary{ID: id, Name: name, Size: len(visible)}
	for _, ind := range visible {
		if p.Sex(id.SubPop(), ind) == model.Male {
			summary.Males++
		}
		if p.Affected(id.SubPop(), ind) {
			summary.Affected++
		}
	}

	for _, field := range p.InfoFields() {
		idx, err := p.InfoIdx(field)
		if err != nil {
			return VSPSummary{}, err
		}
		values := make([]float64, len(visible))
		for i, ind := range visible {
			values[i] = p.InfoAt(id.SubPop(), ind, idx)
		}
		fs := FieldSummary{Field: field}
		if len(values) > 0 {
			fs.Mean = stat.Mean(values, nil)
		}
		if len(values) > 1 {
			fs.StdDev = stat.StdDev(values, nil)
		}
		summary.Fields = append(summary.Fields, fs)
	}

	for locus := 0; locus < p.NumLoci(); locus++ {
		counts := make(map[model.Allele]int)
		total := 0
		for _, ind := range visible {
			for slot := 0; slot < p.Ploidy(); slot++ {
				counts[p.Allele(id.SubPop(), ind, locus, slot)]++
				total++
			}
		}
		freq := AlleleFrequency{Locus: locus, Frequencies: make(map[model.Allele]float64, len(counts))}
		for allele, n := range counts {
			freq.Frequencies[allele] = float64(n) / float64(total)
		}
		summary.Alleles = append(summary.Alleles, freq)
	}
	return summary, nil
}

// Report summarizes one subpopulation: the whole-subpopulation row first,
// then one row per VSP of the assigned splitter, if any.
func Report(p *pop.Population, subPop int) ([]VSPSummary, error) {
	if subPop < 0 || subPop >= p.NumSubPops() {
		return nil, fmt.Errorf("subpopulation %d does not exist", subPop)
	}
	whole, err := Summarize(p, vsp.WholeSubPop(subPop))
	if err != nil {
		return nil, err
	}
	report := []VSPSummary{whole}
	for v := 0; v < p.NumVirtualSubPops(subPop); v++ {
		summary, err := Summarize(p, vsp.NewID(subPop, v))
		if err != nil {
			return nil, err
		}
		report = append(report, summary)
	}
	return report, nil
}
