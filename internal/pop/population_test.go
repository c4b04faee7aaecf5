package pop

import (
	"testing"

	"gonos/internal/model"
	"gonos/internal/vsp"
)

func newTestPopulation(t *testing.T) *Population {
	t.Helper()
	p, err := New(Config{
		ID:          "test",
		Ploidy:      2,
		Loci:        2,
		InfoFields:  []string{"x", "fitness"},
		SubPopSizes: []int{4, 2},
	})
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	return p
}

func TestNewValidation(t *testing.T) {
	cases := []Config{
		{Ploidy: 0, Loci: 1, SubPopSizes: []int{2}},
		{Ploidy: 2, Loci: -1, SubPopSizes: []int{2}},
		{Ploidy: 2, Loci: 1},
		{Ploidy: 2, Loci: 1, SubPopSizes: []int{-1}},
		{Ploidy: 2, Loci: 1, SubPopSizes: []int{2}, InfoFields: []string{""}},
		{Ploidy: 2, Loci: 1, SubPopSizes: []int{2}, InfoFields: []string{"x", "x"}},
	}
	for _, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Fatalf("expected error for config %+v", cfg)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	p := newTestPopulation(t)
	if p.NumSubPops() != 2 || p.SubPopSize(0) != 4 || p.SubPopSize(1) != 2 {
		t.Fatalf("unexpected shape: subpops=%d", p.NumSubPops())
	}
	if p.TotalSize() != 6 {
		t.Fatalf("unexpected total size %d", p.TotalSize())
	}
	for sp := 0; sp < p.NumSubPops(); sp++ {
		for i := 0; i < p.SubPopSize(sp); i++ {
			if !p.Visible(sp, i) {
				t.Fatalf("individual (%d, %d) starts hidden", sp, i)
			}
			if p.Sex(sp, i) != model.Male || p.Affected(sp, i) {
				t.Fatalf("unexpected defaults for (%d, %d)", sp, i)
			}
		}
	}
}

func TestAccessors(t *testing.T) {
	p := newTestPopulation(t)

	p.SetSex(0, 1, model.Female)
	p.SetAffected(0, 1, true)
	p.SetAllele(0, 1, 1, 0, 3)
	idx, err := p.InfoIdx("x")
	if err != nil {
		t.Fatalf("info idx: %v", err)
	}
	p.SetInfoAt(0, 1, idx, 2.5)

	if p.Sex(0, 1) != model.Female || !p.Affected(0, 1) {
		t.Fatal("sex/affection writes lost")
	}
	if p.Allele(0, 1, 1, 0) != 3 || p.Allele(0, 1, 0, 0) != 0 {
		t.Fatal("allele writes lost or misplaced")
	}
	if p.InfoAt(0, 1, idx) != 2.5 {
		t.Fatal("info write lost")
	}
	if _, err := p.InfoIdx("age"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestVisibility(t *testing.T) {
	p := newTestPopulation(t)

	p.SetVisible(0, 0, false)
	p.SetVisible(0, 2, false)
	if got := p.VisibleIndices(0); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected visible indices %v", got)
	}
	// Other subpopulations are untouched.
	if got := p.VisibleIndices(1); len(got) != 2 {
		t.Fatalf("unexpected visible indices %v in subpop 1", got)
	}

	p.ResetVisibility(0)
	if got := p.VisibleIndices(0); len(got) != 4 {
		t.Fatalf("reset did not restore visibility: %v", got)
	}
}

func TestSetSplitterClones(t *testing.T) {
	p := newTestPopulation(t)
	s, err := vsp.NewSexSplitter(nil)
	if err != nil {
		t.Fatalf("new splitter: %v", err)
	}
	p.SetSplitter(s)
	if p.Splitter() == vsp.Splitter(s) {
		t.Fatal("splitter was not cloned")
	}
	if p.NumVirtualSubPops(0) != 2 {
		t.Fatalf("unexpected VSP count %d", p.NumVirtualSubPops(0))
	}

	// Activating the original must not touch the population's instance.
	if err := s.Activate(p, 0, 0); err != nil {
		t.Fatalf("activate original: %v", err)
	}
	if err := p.Splitter().Activate(p, 0, 1); err != nil {
		t.Fatalf("activate clone: %v", err)
	}
	if err := p.Splitter().Deactivate(0); err != nil {
		t.Fatalf("deactivate clone: %v", err)
	}

	p.SetSplitter(nil)
	if p.Splitter() != nil || p.NumVirtualSubPops(0) != 0 {
		t.Fatal("nil splitter not cleared")
	}
}

func TestSubPopName(t *testing.T) {
	p := newTestPopulation(t)

	name, err := p.SubPopName(vsp.WholeSubPop(1))
	if err != nil || name != "subPop 1" {
		t.Fatalf("whole subpop name: %q err=%v", name, err)
	}
	if _, err := p.SubPopName(vsp.NewID(0, 0)); err == nil {
		t.Fatal("expected error naming a VSP without a splitter")
	}

	s, err := vsp.NewSexSplitter(nil)
	if err != nil {
		t.Fatalf("new splitter: %v", err)
	}
	p.SetSplitter(s)
	name, err = p.SubPopName(vsp.NewID(0, 1))
	if err != nil || name != "FEMALE" {
		t.Fatalf("vsp name: %q err=%v", name, err)
	}
	if _, err := p.SubPopName(vsp.NewID(0, 9)); err == nil {
		t.Fatal("expected error for out-of-range VSP")
	}
	if _, err := p.SubPopName(vsp.NewID(9, 0)); err == nil {
		t.Fatal("expected error for out-of-range subpopulation")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	p := newTestPopulation(t)
	p.SetSex(0, 1, model.Female)
	p.SetAffected(1, 0, true)
	p.SetAllele(0, 1, 0, 1, 2)
	idx, err := p.InfoIdx("fitness")
	if err != nil {
		t.Fatalf("info idx: %v", err)
	}
	p.SetInfoAt(0, 1, idx, 0.75)

	rec := p.Record()
	if rec.ID != "test" || rec.Ploidy != 2 || rec.Loci != 2 {
		t.Fatalf("unexpected record header: %+v", rec)
	}

	restored, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if restored.Sex(0, 1) != model.Female || !restored.Affected(1, 0) {
		t.Fatal("sex/affection lost in round trip")
	}
	if restored.Allele(0, 1, 0, 1) != 2 {
		t.Fatal("genotype lost in round trip")
	}
	if restored.InfoAt(0, 1, idx) != 0.75 {
		t.Fatal("info lost in round trip")
	}
	// Everyone comes back visible regardless of pre-snapshot state.
	if len(restored.VisibleIndices(0)) != 4 {
		t.Fatal("restored individuals not all visible")
	}
}

func TestFromRecordValidation(t *testing.T) {
	rec := newTestPopulation(t).Record()
	rec.SubPops[0][0].Genotype = rec.SubPops[0][0].Genotype[:1]
	if _, err := FromRecord(rec); err == nil {
		t.Fatal("expected error for short genotype")
	}

	rec = newTestPopulation(t).Record()
	rec.SubPops[1][1].Info = nil
	if _, err := FromRecord(rec); err == nil {
		t.Fatal("expected error for missing info values")
	}
}
