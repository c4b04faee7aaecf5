package vsp

import (
	"fmt"
	"sort"
	"strings"

	"gonos/internal/model"
)

// GenotypeSplitter defines VSPs by individual genotype at a set of loci.
// Each VSP is given one or more allele patterns; an individual belongs to the
// VSP if it matches any of them. A pattern lists one allele per (ploidy slot,
// locus) in haplotype order: slot p, locus j at index p*len(loci)+j.
//
// With phase set, a pattern matches only when every (locus, slot) allele is
// equal. Without phase, the comparison at each locus is between unordered
// multisets of alleles, evaluated per locus; an allele match at one locus
// never substitutes for another locus.
type GenotypeSplitter struct {
	base
	loci     []int
	ploidy   int
	phase    bool
	patterns [][][]model.Allele
}

// NewGenotypeSplitter validates patterns eagerly: every VSP entry in alleles
// must hold one or more whole patterns of len(loci)*ploidy alleles.
func NewGenotypeSplitter(loci []int, alleles [][]model.Allele, ploidy int, phase bool, names []string) (*GenotypeSplitter, error) {
	if len(loci) == 0 {
		return nil, fmt.Errorf("at least one locus is required")
	}
	for _, locus := range loci {
		if locus < 0 {
			return nil, fmt.Errorf("invalid locus index %d", locus)
		}
	}
	if ploidy < 1 {
		return nil, fmt.Errorf("invalid ploidy %d", ploidy)
	}
	if len(alleles) == 0 {
		return nil, fmt.Errorf("at least one allele pattern group is required")
	}
	patternLen := len(loci) * ploidy
	patterns := make([][][]model.Allele, len(alleles))
	for i, group := range alleles {
		if len(group) == 0 || len(group)%patternLen != 0 {
			return nil, fmt.Errorf("allele group %d has %d alleles, want a multiple of %d (loci x ploidy)",
				i, len(group), patternLen)
		}
		for start := 0; start < len(group); start += patternLen {
			pattern := append([]model.Allele(nil), group[start:start+patternLen]...)
			patterns[i] = append(patterns[i], pattern)
		}
	}
	s := &GenotypeSplitter{
		base:     newBase(names),
		loci:     append([]int(nil), loci...),
		ploidy:   ploidy,
		phase:    phase,
		patterns: patterns,
	}
	if err := s.checkNames(len(alleles)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GenotypeSplitter) Clone() Splitter {
	patterns := make([][][]model.Allele, len(s.patterns))
	for i, group := range s.patterns {
		patterns[i] = make([][]model.Allele, len(group))
		for j, pattern := range group {
			patterns[i][j] = append([]model.Allele(nil), pattern...)
		}
	}
	return &GenotypeSplitter{
		base:     newBase(s.names),
		loci:     append([]int(nil), s.loci...),
		ploidy:   s.ploidy,
		phase:    s.phase,
		patterns: patterns,
	}
}

func (s *GenotypeSplitter) NumVirtualSubPops() int { return len(s.patterns) }

func (s *GenotypeSplitter) matchPattern(p Population, subPop, ind int, pattern []model.Allele) bool {
	nLoci := len(s.loci)
	if s.phase {
		for slot := 0; slot < s.ploidy; slot++ {
			for j, locus := range s.loci {
				if p.Allele(subPop, ind, locus, slot) != pattern[slot*nLoci+j] {
					return false
				}
			}
		}
		return true
	}
	got := make([]model.Allele, s.ploidy)
	want := make([]model.Allele, s.ploidy)
	for j, locus := range s.loci {
		for slot := 0; slot < s.ploidy; slot++ {
			got[slot] = p.Allele(subPop, ind, locus, slot)
			want[slot] = pattern[slot*nLoci+j]
		}
		if !sameMultiset(got, want) {
			return false
		}
	}
	return true
}

func sameMultiset(a, b []model.Allele) bool {
	as := append([]model.Allele(nil), a...)
	bs := append([]model.Allele(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func (s *GenotypeSplitter) pred(p Population, subPop, vsp int) func(ind int) bool {
	return func(ind int) bool {
		for _, pattern := range s.patterns[vsp] {
			if s.matchPattern(p, subPop, ind, pattern) {
				return true
			}
		}
		return false
	}
}

func (s *GenotypeSplitter) checkPop(p Population) error {
	if p.Ploidy() != s.ploidy {
		return fmt.Errorf("splitter built for ploidy %d, population has %d", s.ploidy, p.Ploidy())
	}
	for _, locus := range s.loci {
		if locus >= p.NumLoci() {
			return fmt.Errorf("locus %d out of range, population has %d loci", locus, p.NumLoci())
		}
	}
	return nil
}

func (s *GenotypeSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, len(s.patterns)); err != nil {
		return 0, err
	}
	if err := s.checkPop(p); err != nil {
		return 0, err
	}
	return countWhere(p, subPop, s.pred(p, subPop, virtualSubPop)), nil
}

func (s *GenotypeSplitter) Contains(p Population, ind int, id ID) bool {
	return s.pred(p, id.SubPop(), id.VirtualSubPop())(ind)
}

func (s *GenotypeSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, len(s.patterns)); err != nil {
		return err
	}
	if err := s.checkPop(p); err != nil {
		return err
	}
	if err := s.checkInactive(); err != nil {
		return err
	}
	activateWhere(p, subPop, s.pred(p, subPop, virtualSubPop))
	s.markActivated(p, subPop)
	return nil
}

func (s *GenotypeSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *GenotypeSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	loci := make([]string, len(s.loci))
	for i, locus := range s.loci {
		loci[i] = fmt.Sprintf("%d", locus)
	}
	groups := make([]string, len(s.patterns[virtualSubPop]))
	for i, pattern := range s.patterns[virtualSubPop] {
		alleles := make([]string, len(pattern))
		for j, a := range pattern {
			alleles[j] = fmt.Sprintf("%d", a)
		}
		groups[i] = strings.Join(alleles, ",")
	}
	return fmt.Sprintf("Genotype %s:%s", strings.Join(loci, ","), strings.Join(groups, "|"))
}
