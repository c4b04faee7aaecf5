package vsp

import "fmt"

// IndexRange is a half-open block [Lo, Hi) of the underlying individual
// index order.
type IndexRange struct {
	Lo, Hi int
}

// RangeSplitter groups individuals in given index ranges into VSPs. Ranges
// may overlap or leave gaps.
type RangeSplitter struct {
	base
	ranges []IndexRange
}

func NewRangeSplitter(ranges []IndexRange, names []string) (*RangeSplitter, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("at least one range is required")
	}
	for _, r := range ranges {
		if r.Lo < 0 || r.Hi <= r.Lo {
			return nil, fmt.Errorf("invalid index range [%d, %d)", r.Lo, r.Hi)
		}
	}
	s := &RangeSplitter{
		base:   newBase(names),
		ranges: append([]IndexRange(nil), ranges...),
	}
	if err := s.checkNames(len(ranges)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RangeSplitter) Clone() Splitter {
	return &RangeSplitter{
		base:   newBase(s.names),
		ranges: append([]IndexRange(nil), s.ranges...),
	}
}

func (s *RangeSplitter) NumVirtualSubPops() int { return len(s.ranges) }

// clip bounds the range by the subpopulation size; a range entirely past the
// end yields an empty VSP, which is not an error.
func (s *RangeSplitter) clip(n, vsp int) (int, int) {
	r := s.ranges[vsp]
	hi := r.Hi
	if hi > n {
		hi = n
	}
	if r.Lo >= hi {
		return 0, 0
	}
	return r.Lo, hi
}

func (s *RangeSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, len(s.ranges)); err != nil {
		return 0, err
	}
	lo, hi := s.clip(p.SubPopSize(subPop), virtualSubPop)
	return hi - lo, nil
}

func (s *RangeSplitter) Contains(p Population, ind int, id ID) bool {
	lo, hi := s.clip(p.SubPopSize(id.SubPop()), id.VirtualSubPop())
	return ind >= lo && ind < hi
}

func (s *RangeSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, len(s.ranges)); err != nil {
		return err
	}
	if err := s.checkInactive(); err != nil {
		return err
	}
	lo, hi := s.clip(p.SubPopSize(subPop), virtualSubPop)
	activateWhere(p, subPop, func(ind int) bool { return ind >= lo && ind < hi })
	s.markActivated(p, subPop)
	return nil
}

func (s *RangeSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *RangeSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	r := s.ranges[virtualSubPop]
	return fmt.Sprintf("Range [%d, %d]", r.Lo, r.Hi)
}
