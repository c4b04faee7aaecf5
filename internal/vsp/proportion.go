package vsp

import (
	"fmt"
	"math"
	"strconv"
)

// proportionTolerance bounds how far the proportions may drift from summing
// to exactly one before construction is rejected.
const proportionTolerance = 1e-6

// ProportionSplitter divides a subpopulation into contiguous blocks of the
// underlying index order, sized by proportion. The last block absorbs any
// rounding remainder, so the blocks are contiguous and exhaustive.
type ProportionSplitter struct {
	base
	proportions []float64
}

func NewProportionSplitter(proportions []float64, names []string) (*ProportionSplitter, error) {
	if len(proportions) == 0 {
		return nil, fmt.Errorf("at least one proportion is required")
	}
	sum := 0.0
	for _, prop := range proportions {
		if prop < 0 {
			return nil, fmt.Errorf("proportions must be non-negative, got %v", prop)
		}
		sum += prop
	}
	if math.Abs(sum-1) > proportionTolerance {
		return nil, fmt.Errorf("proportions must sum to 1, got %v", sum)
	}
	s := &ProportionSplitter{
		base:        newBase(names),
		proportions: append([]float64(nil), proportions...),
	}
	if err := s.checkNames(len(proportions)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ProportionSplitter) Clone() Splitter {
	return &ProportionSplitter{
		base:        newBase(s.names),
		proportions: append([]float64(nil), s.proportions...),
	}
}

func (s *ProportionSplitter) NumVirtualSubPops() int { return len(s.proportions) }

// block returns the [lo, hi) index block of vsp for a subpopulation of n
// individuals.
func (s *ProportionSplitter) block(n, vsp int) (int, int) {
	lo := 0
	for i := 0; i < vsp; i++ {
		lo += s.blockSize(n, i, lo)
	}
	return lo, lo + s.blockSize(n, vsp, lo)
}

func (s *ProportionSplitter) blockSize(n, vsp, start int) int {
	if vsp == len(s.proportions)-1 {
		return n - start
	}
	size := int(math.Round(s.proportions[vsp] * float64(n)))
	if size > n-start {
		size = n - start
	}
	return size
}

func (s *ProportionSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, len(s.proportions)); err != nil {
		return 0, err
	}
	lo, hi := s.block(p.SubPopSize(subPop), virtualSubPop)
	return hi - lo, nil
}

func (s *ProportionSplitter) Contains(p Population, ind int, id ID) bool {
	lo, hi := s.block(p.SubPopSize(id.SubPop()), id.VirtualSubPop())
	return ind >= lo && ind < hi
}

func (s *ProportionSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, len(s.proportions)); err != nil {
		return err
	}
	if err := s.checkInactive(); err != nil {
		return err
	}
	lo, hi := s.block(p.SubPopSize(subPop), virtualSubPop)
	activateWhere(p, subPop, func(ind int) bool { return ind >= lo && ind < hi })
	s.markActivated(p, subPop)
	return nil
}

func (s *ProportionSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *ProportionSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	return "Prop " + strconv.FormatFloat(s.proportions[virtualSubPop], 'g', -1, 64)
}
