package vsp

// AffectionSplitter defines two VSPs by affection status: unaffected
// individuals (vsp 0) and affected ones (vsp 1).
type AffectionSplitter struct {
	base
}

func NewAffectionSplitter(names []string) (*AffectionSplitter, error) {
	s := &AffectionSplitter{base: newBase(names)}
	if err := s.checkNames(2); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AffectionSplitter) Clone() Splitter {
	c := *s
	c.base = newBase(s.names)
	return &c
}

func (s *AffectionSplitter) NumVirtualSubPops() int { return 2 }

func (s *AffectionSplitter) pred(p Population, subPop, vsp int) func(ind int) bool {
	want := vsp == 1
	return func(ind int) bool { return p.Affected(subPop, ind) == want }
}

func (s *AffectionSplitter) Size(p Population, subPop, virtualSubPop int) (int, error) {
	if err := checkSubPop(p, subPop); err != nil {
		return 0, err
	}
	if err := checkVSP(virtualSubPop, 2); err != nil {
		return 0, err
	}
	return countWhere(p, subPop, s.pred(p, subPop, virtualSubPop)), nil
}

func (s *AffectionSplitter) Contains(p Population, ind int, id ID) bool {
	return s.pred(p, id.SubPop(), id.VirtualSubPop())(ind)
}

func (s *AffectionSplitter) Activate(p Population, subPop, virtualSubPop int) error {
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

func (s *AffectionSplitter) Deactivate(subPop int) error { return s.deactivate(subPop) }

func (s *AffectionSplitter) Name(virtualSubPop int) string {
	if name, ok := s.userName(virtualSubPop); ok {
		return name
	}
	if virtualSubPop == 0 {
		return "UNAFFECTED"
	}
	return "AFFECTED"
}
