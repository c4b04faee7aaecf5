// Package pop implements the population storage layer: subpopulations of
// individuals carrying sex, affection status, genotype, information fields
// and the per-individual visibility flag the vsp engine drives.
package pop

import (
	"fmt"

	"gonos/internal/model"
	"gonos/internal/vsp"
)

// Config shapes a new population. All individuals start male, unaffected,
// visible, with zero alleles and zero information values.
type Config struct {
	ID          string
	Ploidy      int
	Loci        int
	InfoFields  []string
	SubPopSizes []int
}

type individual struct {
	sex      model.Sex
	affected bool
	visible  bool
	genotype []model.Allele
	info     []float64
}

// Population holds individuals in ordered subpopulations. Individuals are
// addressed by (subpopulation, ordinal index); the ordinal order is stable
// and never affected by visibility.
type Population struct {
	id         string
	ploidy     int
	loci       int
	infoFields []string
	infoIdx    map[string]int
	subPops    [][]individual
	splitter   vsp.Splitter
}

func New(cfg Config) (*Population, error) {
	if cfg.Ploidy < 1 {
		return nil, fmt.Errorf("ploidy must be at least 1, got %d", cfg.Ploidy)
	}
	if cfg.Loci < 0 {
		return nil, fmt.Errorf("invalid locus count %d", cfg.Loci)
	}
	if len(cfg.SubPopSizes) == 0 {
		return nil, fmt.Errorf("at least one subpopulation is required")
	}
	infoIdx := make(map[string]int, len(cfg.InfoFields))
	for i, field := range cfg.InfoFields {
		if field == "" {
			return nil, fmt.Errorf("information field %d has no name", i)
		}
		if _, dup := infoIdx[field]; dup {
			return nil, fmt.Errorf("duplicate information field %q", field)
		}
		infoIdx[field] = i
	}
	p := &Population{
		id:         cfg.ID,
		ploidy:     cfg.Ploidy,
		loci:       cfg.Loci,
		infoFields: append([]string(nil), cfg.InfoFields...),
		infoIdx:    infoIdx,
	}
	for sp, size := range cfg.SubPopSizes {
		if size < 0 {
			return nil, fmt.Errorf("subpopulation %d has negative size %d", sp, size)
		}
		inds := make([]individual, size)
		for i := range inds {
			inds[i] = individual{
				visible:  true,
				genotype: make([]model.Allele, cfg.Ploidy*cfg.Loci),
				info:     make([]float64, len(cfg.InfoFields)),
			}
		}
		p.subPops = append(p.subPops, inds)
	}
	return p, nil
}

func (p *Population) ID() string  { return p.id }
func (p *Population) Ploidy() int { return p.ploidy }
func (p *Population) NumLoci() int {
	return p.loci
}

func (p *Population) NumSubPops() int { return len(p.subPops) }

func (p *Population) SubPopSize(subPop int) int { return len(p.subPops[subPop]) }

func (p *Population) TotalSize() int {
	total := 0
	for _, inds := range p.subPops {
		total += len(inds)
	}
	return total
}

func (p *Population) InfoFields() []string {
	return append([]string(nil), p.infoFields...)
}

func (p *Population) InfoIdx(field string) (int, error) {
	idx, ok := p.infoIdx[field]
	if !ok {
		return 0, fmt.Errorf("unknown information field %q", field)
	}
	return idx, nil
}

func (p *Population) InfoAt(subPop, ind, idx int) float64 {
	return p.subPops[subPop][ind].info[idx]
}

func (p *Population) SetInfoAt(subPop, ind, idx int, value float64) {
	p.subPops[subPop][ind].info[idx] = value
}

func (p *Population) Sex(subPop, ind int) model.Sex { return p.subPops[subPop][ind].sex }

func (p *Population) SetSex(subPop, ind int, sex model.Sex) {
	p.subPops[subPop][ind].sex = sex
}

func (p *Population) Affected(subPop, ind int) bool { return p.subPops[subPop][ind].affected }

func (p *Population) SetAffected(subPop, ind int, affected bool) {
	p.subPops[subPop][ind].affected = affected
}

// Allele returns the allele at locus for ploidy slot. Genotypes are stored
// slot-major: slot p, locus l at index p*loci+l.
func (p *Population) Allele(subPop, ind, locus, slot int) model.Allele {
	return p.subPops[subPop][ind].genotype[slot*p.loci+locus]
}

func (p *Population) SetAllele(subPop, ind, locus, slot int, allele model.Allele) {
	p.subPops[subPop][ind].genotype[slot*p.loci+locus] = allele
}

func (p *Population) Visible(subPop, ind int) bool { return p.subPops[subPop][ind].visible }

func (p *Population) SetVisible(subPop, ind int, visible bool) {
	p.subPops[subPop][ind].visible = visible
}

// ResetVisibility makes every individual of subPop visible again.
func (p *Population) ResetVisibility(subPop int) {
	inds := p.subPops[subPop]
	for i := range inds {
		inds[i].visible = true
	}
}

// VisibleIndices returns the ordinal indices of visible individuals, the
// iteration surface consumers use after activating a VSP.
func (p *Population) VisibleIndices(subPop int) []int {
	var visible []int
	for i, ind := range p.subPops[subPop] {
		if ind.visible {
			visible = append(visible, i)
		}
	}
	return visible
}

// SetSplitter assigns the splitter defining VSPs for all subpopulations.
// The splitter is cloned; one instance per population, per the activation
// contract.
func (p *Population) SetSplitter(s vsp.Splitter) {
	if s == nil {
		p.splitter = nil
		return
	}
	p.splitter = s.Clone()
}

func (p *Population) Splitter() vsp.Splitter { return p.splitter }

func (p *Population) NumVirtualSubPops(subPop int) int {
	if p.splitter == nil {
		return 0
	}
	return p.splitter.NumVirtualSubPops()
}

// SubPopName names a (virtual) subpopulation for display.
func (p *Population) SubPopName(id vsp.ID) (string, error) {
	if !id.Valid() || id.SubPop() >= len(p.subPops) {
		return "", fmt.Errorf("subpopulation %s does not exist", id)
	}
	if !id.IsVirtual() {
		return fmt.Sprintf("subPop %d", id.SubPop()), nil
	}
	if p.splitter == nil {
		return "", fmt.Errorf("no splitter assigned, cannot name %s", id)
	}
	if id.VirtualSubPop() >= p.splitter.NumVirtualSubPops() {
		return "", fmt.Errorf("virtual subpopulation %s does not exist", id)
	}
	return p.splitter.Name(id.VirtualSubPop()), nil
}
