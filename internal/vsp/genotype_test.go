package vsp_test

import (
	"testing"

	"gonos/internal/model"
	"gonos/internal/pop"
	"gonos/internal/vsp"
)

// newGenotypePop builds a diploid subpopulation of 4 with 2 loci:
//
//	ind 0: locus0 (1,0)  locus1 (0,0)
//	ind 1: locus0 (0,1)  locus1 (0,0)
//	ind 2: locus0 (0,0)  locus1 (1,1)
//	ind 3: locus0 (0,1)  locus1 (1,0)
func newGenotypePop(t *testing.T) *pop.Population {
	t.Helper()
	p, err := pop.New(pop.Config{
		ID:          "geno",
		Ploidy:      2,
		Loci:        2,
		SubPopSizes: []int{4},
	})
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	set := func(ind, locus, slot int, a model.Allele) {
		p.SetAllele(0, ind, locus, slot, a)
	}
	set(0, 0, 0, 1)
	set(1, 0, 1, 1)
	set(2, 1, 0, 1)
	set(2, 1, 1, 1)
	set(3, 0, 1, 1)
	set(3, 1, 0, 1)
	return p
}

func TestGenotypePhaseSensitivity(t *testing.T) {
	p := newGenotypePop(t)

	// Pattern (0,1) at locus 0: slot 0 carries 0, slot 1 carries 1.
	unphased, err := vsp.NewGenotypeSplitter([]int{0}, [][]model.Allele{{0, 1}}, 2, false, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	// ind 0 has (1,0): matches as a multiset.
	if !unphased.Contains(p, 0, vsp.NewID(0, 0)) {
		t.Fatal("unphased (0,1) must match individual with (1,0)")
	}
	if !unphased.Contains(p, 1, vsp.NewID(0, 0)) {
		t.Fatal("unphased (0,1) must match individual with (0,1)")
	}

	phased, err := vsp.NewGenotypeSplitter([]int{0}, [][]model.Allele{{0, 1}}, 2, true, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	if phased.Contains(p, 0, vsp.NewID(0, 0)) {
		t.Fatal("phased (0,1) must not match individual with (1,0)")
	}
	if !phased.Contains(p, 1, vsp.NewID(0, 0)) {
		t.Fatal("phased (0,1) must match individual with (0,1)")
	}

	reversed, err := vsp.NewGenotypeSplitter([]int{0}, [][]model.Allele{{1, 0}}, 2, true, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	if !reversed.Contains(p, 0, vsp.NewID(0, 0)) {
		t.Fatal("phased (1,0) must match individual with (1,0)")
	}
}

func TestGenotypeMatchingIsPerLocus(t *testing.T) {
	p := newGenotypePop(t)

	// Pattern: locus0 multiset {0,1}, locus1 multiset {0,1}. Haplotype
	// layout: slot0 = (0, 0), slot1 = (1, 1).
	s, err := vsp.NewGenotypeSplitter([]int{0, 1}, [][]model.Allele{{0, 0, 1, 1}}, 2, false, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	// ind 3 has {0,1} at locus0 and {0,1} at locus1.
	if !s.Contains(p, 3, vsp.NewID(0, 0)) {
		t.Fatal("individual 3 must match at both loci")
	}
	// ind 0 has {0,1} at locus0 but {0,0} at locus1: a locus0 match cannot
	// borrow the allele missing at locus1.
	if s.Contains(p, 0, vsp.NewID(0, 0)) {
		t.Fatal("individual 0 must not match: locus1 multiset differs")
	}
	// ind 2 has {0,0} at locus0 and {1,1} at locus1: pooled across loci the
	// alleles would fit, per locus they do not.
	if s.Contains(p, 2, vsp.NewID(0, 0)) {
		t.Fatal("individual 2 must not match: per-locus comparison required")
	}
}

func TestGenotypeUnionOfPatterns(t *testing.T) {
	p := newGenotypePop(t)

	// One VSP with two accepted patterns at locus 1: (0,0) or (1,1).
	s, err := vsp.NewGenotypeSplitter([]int{1}, [][]model.Allele{{0, 0, 1, 1}}, 2, false, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	if got := mustSize(t, s, p, 0, 0); got != 3 {
		t.Fatalf("expected inds 0, 1, 2 to match either pattern, got size %d", got)
	}
	if s.Contains(p, 3, vsp.NewID(0, 0)) {
		t.Fatal("individual 3 has (1,0) at locus 1 and matches neither pattern")
	}
}

func TestGenotypeSplitterValidation(t *testing.T) {
	if _, err := vsp.NewGenotypeSplitter(nil, [][]model.Allele{{0, 0}}, 2, false, nil); err == nil {
		t.Fatal("expected error for no loci")
	}
	if _, err := vsp.NewGenotypeSplitter([]int{0}, nil, 2, false, nil); err == nil {
		t.Fatal("expected error for no patterns")
	}
	// Three alleles cannot form a whole diploid single-locus pattern.
	if _, err := vsp.NewGenotypeSplitter([]int{0}, [][]model.Allele{{0, 1, 1}}, 2, false, nil); err == nil {
		t.Fatal("expected error for partial pattern")
	}
	if _, err := vsp.NewGenotypeSplitter([]int{-1}, [][]model.Allele{{0, 0}}, 2, false, nil); err == nil {
		t.Fatal("expected error for negative locus")
	}
	if _, err := vsp.NewGenotypeSplitter([]int{0}, [][]model.Allele{{0, 0}}, 0, false, nil); err == nil {
		t.Fatal("expected error for zero ploidy")
	}

	p := newGenotypePop(t)
	s, err := vsp.NewGenotypeSplitter([]int{5}, [][]model.Allele{{0, 0}}, 2, false, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	if _, err := s.Size(p, 0, 0); err == nil {
		t.Fatal("expected error for locus beyond population loci")
	}
}

func TestGenotypeDefaultName(t *testing.T) {
	s, err := vsp.NewGenotypeSplitter([]int{0, 1}, [][]model.Allele{{0, 0, 1, 1}}, 2, false, nil)
	if err != nil {
		t.Fatalf("new genotype splitter: %v", err)
	}
	if got := s.Name(0); got != "Genotype 0,1:0,0,1,1" {
		t.Fatalf("unexpected name %q", got)
	}
}
