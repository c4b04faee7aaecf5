package vsp

import (
	"fmt"
	"strings"
)

// ProductSplitter intersects the VSPs of several splitters. The combined VSP
// count is the product of the children's counts; a combined id decomposes in
// mixed radix with child 0 as the slowest-varying digit, so composed names
// read left to right. An individual belongs to a combined VSP only if every
// child's predicate holds at its decoded local id.
type ProductSplitter struct {
	base
	splitters []Splitter
	counts    []int
	total     int
}

func NewProductSplitter(splitters []Splitter, names []string) (*ProductSplitter, error) {
	if len(splitters) == 0 {
		return nil, fmt.Errorf("at least one splitter is required")
	}
	owned := make([]Splitter, len(splitters))
	counts := make([]int, len(splitters))
	total := 1
	for i, child := range splitters {
		if child == nil {
			return nil, fmt.Errorf("splitter %d is nil", i)
		}
		n := child.NumVirtualSubPops()
		if n == 0 {
			return nil, fmt.Errorf("splitter %d defines no virtual subpopulations", i)
		}
		owned[i] = child.Clone()
		counts[i] = n
		total *= n
	}
	s := &ProductSplitter{base: newBase(names), splitters: owned, counts: counts, total: total}
	if err := s.checkNames(total); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ProductSplitter) Clone() Splitter {
	children := make([]Splitter, len(s.splitters))
	for i, child := range s.splitters {
		children[i] = child.Clone()
	}
	return &ProductSplitter{
		base:      newBase(s.names),
		splitters: children,
		counts:    append([]int(nil), s.counts...),
		total:     s.total,
	}
}

func (s *ProductSplitter) NumVirtualSubPops() int { return s.total }

// decompose maps a combined id to one local id per child.
func (s *ProductSplitter) decompose(vsp int) []int {
	locals := make([]int, len(s.counts))
	for i := len(s.counts) - 1; i >= 0; i-- {
		locals[i] = vsp % s.counts[i]
		vsp /= s.counts[i]
	}
	return locals
}

func (s *ProductSplitter) pred(p Population, subPop, vsp int) func(ind int) bool {
	locals := s.decompose(vsp)
	return func(ind int) bool {
		for i, child := range s.splitters {
			if !child.Contains(p, ind, NewID(subPop, locals[i])) {
				return false
			}
		}
		return true
	}
}

// Size counts by the AND predicate over the unsliced index range; it is
// never derived from child sizes because the children's VSPs need not be
// independent.
func (s *ProductSplitter) checkPop(p Population) error {
	return checkChildren(p, s.splitters)
}

func (s *ProductSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, s.total); err != nil {
		return 0, err
	}
	if err := s.checkPop(p); err != nil {
		return 0, err
	}
	return countWhere(p, subPop, s.pred(p, subPop, virtualSubPop)), nil
}

func (s *ProductSplitter) Contains(p Population, ind int, id ID) bool {
	return s.pred(p, id.SubPop(), id.VirtualSubPop())(ind)
}

func (s *ProductSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, s.total); err != nil {
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

func (s *ProductSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *ProductSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	locals := s.decompose(virtualSubPop)
	parts := make([]string, len(locals))
	for i, local := range locals {
		parts[i] = s.splitters[i].Name(local)
	}
	return strings.Join(parts, ", ")
}
