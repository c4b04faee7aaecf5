package vsp

import (
	"fmt"
	"strconv"
)

// InfoRange is a half-open interval [Lo, Hi) over an information field.
type InfoRange struct {
	Lo, Hi float64
}

// InfoSplitter groups individuals by the value of one information field.
// Exactly one of three modes is chosen at construction: a list of exact
// values (one VSP per value), a list of strictly increasing cutoffs (VSP i
// holds cutoff[i-1] <= v < cutoff[i], with open-ended first and last VSPs),
// or a list of explicit ranges, which may overlap.
type InfoSplitter struct {
	base
	field   string
	values  []float64
	cutoffs []float64
	ranges  []InfoRange
}

func NewInfoSplitter(field string, values, cutoffs []float64, ranges []InfoRange, names []string) (*InfoSplitter, error) {
	if field == "" {
		return nil, fmt.Errorf("information field is required")
	}
	modes := 0
	for _, set := range []bool{len(values) > 0, len(cutoffs) > 0, len(ranges) > 0} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return nil, fmt.Errorf("exactly one of values, cutoffs and ranges must be given")
	}
	for i := 1; i < len(cutoffs); i++ {
		if cutoffs[i] <= cutoffs[i-1] {
			return nil, fmt.Errorf("cutoff values must be strictly increasing, got %v after %v", cutoffs[i], cutoffs[i-1])
		}
	}
	for _, r := range ranges {
		if r.Hi <= r.Lo {
			return nil, fmt.Errorf("invalid range [%v, %v)", r.Lo, r.Hi)
		}
	}
	s := &InfoSplitter{
		base:    newBase(names),
		field:   field,
		values:  append([]float64(nil), values...),
		cutoffs: append([]float64(nil), cutoffs...),
		ranges:  append([]InfoRange(nil), ranges...),
	}
	if err := s.checkNames(s.NumVirtualSubPops()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *InfoSplitter) Clone() Splitter {
	c := &InfoSplitter{
		base:    newBase(s.names),
		field:   s.field,
		values:  append([]float64(nil), s.values...),
		cutoffs: append([]float64(nil), s.cutoffs...),
		ranges:  append([]InfoRange(nil), s.ranges...),
	}
	return c
}

func (s *InfoSplitter) NumVirtualSubPops() int {
	switch {
	case len(s.values) > 0:
		return len(s.values)
	case len(s.cutoffs) > 0:
		return len(s.cutoffs) + 1
	default:
		return len(s.ranges)
	}
}

// matches applies the mode-specific membership rule to one field value.
func (s *InfoSplitter) matches(v float64, vsp int) bool {
	switch {
	case len(s.values) > 0:
		return v == s.values[vsp]
	case len(s.cutoffs) > 0:
		if vsp == 0 {
			return v < s.cutoffs[0]
		}
		if vsp == len(s.cutoffs) {
			return v >= s.cutoffs[len(s.cutoffs)-1]
		}
		return v >= s.cutoffs[vsp-1] && v < s.cutoffs[vsp]
	default:
		r := s.ranges[vsp]
		return v >= r.Lo && v < r.Hi
	}
}

func (s *InfoSplitter) pred(p Population, subPop, idx, vsp int) func(ind int) bool {
	return func(ind int) bool { return s.matches(p.InfoAt(subPop, ind, idx), vsp) }
}

func (s *InfoSplitter) checkPop(p Population) error {
	_, err := p.InfoIdx(s.field)
	return err
}

func (s *InfoSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, s.NumVirtualSubPops()); err != nil {
		return 0, err
	}
	idx, err := p.InfoIdx(s.field)
	if err != nil {
		return 0, err
	}
	return countWhere(p, subPop, s.pred(p, subPop, idx, virtualSubPop)), nil
}

func (s *InfoSplitter) Contains(p Population, ind int, id ID) bool {
	idx, err := p.InfoIdx(s.field)
	if err != nil {
		panic(err)
	}
	return s.matches(p.InfoAt(id.SubPop(), ind, idx), id.VirtualSubPop())
}

func (s *InfoSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, s.NumVirtualSubPops()); err != nil {
		return err
	}
	idx, err := p.InfoIdx(s.field)
	if err != nil {
		return err
	}
	if err := s.checkInactive(); err != nil {
		return err
	}
	activateWhere(p, subPop, s.pred(p, subPop, idx, virtualSubPop))
	s.markActivated(p, subPop)
	return nil
}

func (s *InfoSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *InfoSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	switch {
	case len(s.values) > 0:
		return fmt.Sprintf("%s = %s", s.field, formatInfo(s.values[virtualSubPop]))
	case len(s.cutoffs) > 0:
		if virtualSubPop == 0 {
			return fmt.Sprintf("%s < %s", s.field, formatInfo(s.cutoffs[0]))
		}
		if virtualSubPop == len(s.cutoffs) {
			return fmt.Sprintf("%s >= %s", s.field, formatInfo(s.cutoffs[len(s.cutoffs)-1]))
		}
		return fmt.Sprintf("%s <= %s < %s",
			formatInfo(s.cutoffs[virtualSubPop-1]), s.field, formatInfo(s.cutoffs[virtualSubPop]))
	default:
		r := s.ranges[virtualSubPop]
		return fmt.Sprintf("%s <= %s < %s", formatInfo(r.Lo), s.field, formatInfo(r.Hi))
	}
}

func formatInfo(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
