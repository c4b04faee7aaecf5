package vsp

import "gonos/internal/model"

// SexSplitter defines two VSPs: males (vsp 0) and females (vsp 1).
type SexSplitter struct {
	base
}

func NewSexSplitter(names []string) (*SexSplitter, error) {
	s := &SexSplitter{base: newBase(names)}
	if err := s.checkNames(2); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SexSplitter) Clone() Splitter {
	c := *s
	c.base = newBase(s.names)
	return &c
}

func (s *SexSplitter) NumVirtualSubPops() int { return 2 }

func (s *SexSplitter) pred(p Population, subPop, vsp int) func(ind int) bool {
	want := model.Male
	if vsp == 1 {
		want = model.Female
	}
	return func(ind int) bool { return p.Sex(subPop, ind) == want }
}

func (s *SexSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, 2); err != nil {
		return 0, err
	}
	return countWhere(p, subPop, s.pred(p, subPop, virtualSubPop)), nil
}

func (s *SexSplitter) Contains(p Population, ind int, id ID) bool {
	return s.pred(p, id.SubPop(), id.VirtualSubPop())(ind)
}

func (s *SexSplitter) Activate(p Population, subPop, virtualSubPop int) error {
	if err := checkSubPop(p, subPop); err != nil {
		return err
	}
	if err := checkVSP(virtualSubPop, 2); err != nil {
		return err
	}
	if err := s.checkInactive(); err != nil {
		return err
	}
	activateWhere(p, subPop, s.pred(p, subPop, virtualSubPop))
	s.markActivated(p, subPop)
	return nil
}

func (s *SexSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *SexSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	if virtualSubPop == 0 {
		return "MALE"
	}
	return "FEMALE"
}
