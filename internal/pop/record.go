package pop

import (
	"fmt"

	"gonos/internal/model"
)

// Record converts the population to its snapshot form. The splitter and
// visibility state are deliberately not part of the snapshot.
func (p *Population) Record() model.PopulationRecord {
	rec := model.PopulationRecord{
		ID:         p.id,
		Ploidy:     p.ploidy,
		Loci:       p.loci,
		InfoFields: append([]string(nil), p.infoFields...),
	}
	for _, inds := range p.subPops {
		subPop := make([]model.IndividualRecord, len(inds))
		for i, ind := range inds {
			subPop[i] = model.IndividualRecord{
				Sex:      ind.sex,
				Affected: ind.affected,
				Genotype: append([]model.Allele(nil), ind.genotype...),
				Info:     append([]float64(nil), ind.info...),
			}
		}
		rec.SubPops = append(rec.SubPops, subPop)
	}
	return rec
}

// FromRecord rebuilds a population from a snapshot, validating genotype and
// information lengths against the declared shape.
func FromRecord(rec model.PopulationRecord) (*Population, error) {
	sizes := make([]int, len(rec.SubPops))
	for sp, inds := range rec.SubPops {
		sizes[sp] = len(inds)
	}
	p, err := New(Config{
		ID:          rec.ID,
		Ploidy:      rec.Ploidy,
		Loci:        rec.Loci,
		InfoFields:  rec.InfoFields,
		SubPopSizes: sizes,
	})
	if err != nil {
		return nil, err
	}
	genotypeLen := rec.Ploidy * rec.Loci
	for sp, inds := range rec.SubPops {
		for i, ind := range inds {
			if len(ind.Genotype) != genotypeLen {
				return nil, fmt.Errorf("individual (%d, %d) has %d alleles, want %d", sp, i, len(ind.Genotype), genotypeLen)
			}
			if len(ind.Info) != len(rec.InfoFields) {
				return nil, fmt.Errorf("individual (%d, %d) has %d info values, want %d", sp, i, len(ind.Info), len(rec.InfoFields))
			}
			p.subPops[sp][i].sex = ind.Sex
			p.subPops[sp][i].affected = ind.Affected
			copy(p.subPops[sp][i].genotype, ind.Genotype)
			copy(p.subPops[sp][i].info, ind.Info)
		}
	}
	return p, nil
}
