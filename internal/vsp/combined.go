package vsp

import (
	"fmt"
	"strings"
)

// vspPair addresses one VSP of one child splitter.
type vspPair struct {
	splitter int
	vsp      int
}

// CombinedSplitter stacks the VSPs of several splitters. By default the
// combined numbering walks the children in order: with a sex splitter and an
// affection splitter, vsp 0 and 1 are male and female and vsp 2 and 3 are
// unaffected and affected. An optional vspMap instead defines each combined
// VSP as the union of one or more stacked VSP ids; overlapping members are
// counted once.
type CombinedSplitter struct {
	base
	splitters []Splitter
	vspMap    [][]vspPair
}

// NewCombinedSplitter deep-clones the given splitters. Entries of vspMap are
// VSP ids in the stacked numbering, i.e. ints in [0, sum of child counts).
func NewCombinedSplitter(splitters []Splitter, vspMap [][]int, names []string) (*CombinedSplitter, error) {
	if len(splitters) == 0 {
		return nil, fmt.Errorf("at least one splitter is required")
	}
	owned := make([]Splitter, len(splitters))
	total := 0
	for i, child := range splitters {
		if child == nil {
			return nil, fmt.Errorf("splitter %d is nil", i)
		}
		owned[i] = child.Clone()
		total += child.NumVirtualSubPops()
	}

	var resolved [][]vspPair
	if len(vspMap) == 0 {
		for i, child := range owned {
			for v := 0; v < child.NumVirtualSubPops(); v++ {
				resolved = append(resolved, []vspPair{{splitter: i, vsp: v}})
			}
		}
	} else {
		for _, entry := range vspMap {
			if len(entry) == 0 {
				return nil, fmt.Errorf("empty vsp map entry")
			}
			pairs := make([]vspPair, 0, len(entry))
			for _, stacked := range entry {
				pair, err := resolveStacked(owned, stacked)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, pair)
			}
			resolved = append(resolved, pairs)
		}
	}

	s := &CombinedSplitter{base: newBase(names), splitters: owned, vspMap: resolved}
	if err := s.checkNames(len(resolved)); err != nil {
		return nil, err
	}
	return s, nil
}

// resolveStacked walks the children in order, subtracting each child's VSP
// count until the remainder falls inside a child's range.
func resolveStacked(splitters []Splitter, stacked int) (vspPair, error) {
	if stacked < 0 {
		return vspPair{}, fmt.Errorf("invalid stacked vsp id %d", stacked)
	}
	rest := stacked
	for i, child := range splitters {
		n := child.NumVirtualSubPops()
		if rest < n {
			return vspPair{splitter: i, vsp: rest}, nil
		}
		rest -= n
	}
	return vspPair{}, fmt.Errorf("stacked vsp id %d out of range", stacked)
}

func (s *CombinedSplitter) Clone() Splitter {
	children := make([]Splitter, len(s.splitters))
	for i, child := range s.splitters {
		children[i] = child.Clone()
	}
	vspMap := make([][]vspPair, len(s.vspMap))
	for i, pairs := range s.vspMap {
		vspMap[i] = append([]vspPair(nil), pairs...)
	}
	return &CombinedSplitter{base: newBase(s.names), splitters: children, vspMap: vspMap}
}

func (s *CombinedSplitter) NumVirtualSubPops() int { return len(s.vspMap) }

// pred ORs the member predicates. Children are queried through Contains
// only; their own activation state is never touched.
func (s *CombinedSplitter) pred(p Population, subPop, vsp int) func(ind int) bool {
	pairs := s.vspMap[vsp]
	return func(ind int) bool {
		for _, pair := range pairs {
			if s.splitters[pair.splitter].Contains(p, ind, NewID(subPop, pair.vsp)) {
				return true
			}
		}
		return false
	}
}

func (s *CombinedSplitter) checkPop(p Population) error {
	return checkChildren(p, s.splitters)
}

func (s *CombinedSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, len(s.vspMap)); err != nil {
		return 0, err
	}
	if err := s.checkPop(p); err != nil {
		return 0, err
	}
	return countWhere(p, subPop, s.pred(p, subPop, virtualSubPop)), nil
}

func (s *CombinedSplitter) Contains(p Population, ind int, id ID) bool {
	return s.pred(p, id.SubPop(), id.VirtualSubPop())(ind)
}

func (s *CombinedSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, len(s.vspMap)); err != nil {
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

func (s *CombinedSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *CombinedSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	pairs := s.vspMap[virtualSubPop]
	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = s.splitters[pair.splitter].Name(pair.vsp)
	}
	return strings.Join(parts, " or ")
}
