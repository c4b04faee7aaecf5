package vsp_test

import (
	"testing"

	"gonos/internal/pop"
	"gonos/internal/vsp"
)

func TestIDNormalizesNegatives(t *testing.T) {
	id := vsp.NewID(-5, -1)
	if id.Valid() {
		t.Fatal("negative subpopulation must normalize to an invalid id")
	}
	if id.IsVirtual() {
		t.Fatal("negative virtual id must normalize to non-virtual")
	}

	whole := vsp.WholeSubPop(2)
	if !whole.Valid() || whole.IsVirtual() {
		t.Fatalf("whole-subpopulation id misbehaves: %s", whole)
	}
	if whole.SubPop() != 2 || whole.VirtualSubPop() != vsp.None {
		t.Fatalf("unexpected components: %d, %d", whole.SubPop(), whole.VirtualSubPop())
	}
}

func TestIDEqualityIsStructural(t *testing.T) {
	if vsp.NewID(1, 2) != vsp.NewID(1, 2) {
		t.Fatal("equal ids must compare equal")
	}
	if vsp.NewID(1, 2) == vsp.NewID(1, 3) {
		t.Fatal("different virtual ids must compare unequal")
	}
	if vsp.NewID(0, -1) != vsp.WholeSubPop(0) {
		t.Fatal("normalized forms must compare equal")
	}
}

func TestListContainsAndOverlaps(t *testing.T) {
	l := vsp.NewList(vsp.NewID(0, 1), vsp.WholeSubPop(2))
	if !l.Contains(vsp.NewID(0, 1)) {
		t.Fatal("expected handle to be found")
	}
	if l.Contains(vsp.NewID(0, 0)) {
		t.Fatal("unexpected handle found")
	}
	if !l.Overlaps(2) || l.Overlaps(1) {
		t.Fatal("overlap check wrong")
	}
	if l.Empty() || l.Len() != 2 {
		t.Fatalf("unexpected shape: empty=%v len=%d", l.Empty(), l.Len())
	}
}

func TestListExpandWildcard(t *testing.T) {
	p := newTestPop(t, 4, 4)

	// Without a splitter the wildcard yields the whole subpopulations.
	expanded, err := vsp.All().Expand(p)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if expanded.Len() != 2 || expanded.At(0) != vsp.WholeSubPop(0) || expanded.At(1) != vsp.WholeSubPop(1) {
		t.Fatalf("unexpected expansion %s", expanded)
	}

	// With a splitter assigned, the wildcard binds to the current VSP set.
	sex, _ := vsp.NewSexSplitter(nil)
	p.SetSplitter(sex)
	expanded, err = vsp.All().Expand(p)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if expanded.Len() != 4 {
		t.Fatalf("expected 2 subpops x 2 VSPs, got %d", expanded.Len())
	}
	if expanded.At(0) != vsp.NewID(0, 0) || expanded.At(3) != vsp.NewID(1, 1) {
		t.Fatalf("unexpected expansion %s", expanded)
	}
}

func TestListExpandValidatesHandles(t *testing.T) {
	p := newTestPop(t, 4)
	sex, _ := vsp.NewSexSplitter(nil)
	p.SetSplitter(sex)

	if _, err := vsp.NewList(vsp.WholeSubPop(1)).Expand(p); err == nil {
		t.Fatal("expected error for missing subpopulation")
	}
	if _, err := vsp.NewList(vsp.NewID(0, 2)).Expand(p); err == nil {
		t.Fatal("expected error for missing virtual subpopulation")
	}
	ok, err := vsp.NewList(vsp.NewID(0, 1), vsp.WholeSubPop(0)).Expand(p)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if ok.Len() != 2 {
		t.Fatalf("expected 2 handles, got %d", ok.Len())
	}
}

func TestSubPopNameUsesSplitter(t *testing.T) {
	p := newTestPop(t, 4)
	sex, _ := vsp.NewSexSplitter(nil)
	p.SetSplitter(sex)

	name, err := p.SubPopName(vsp.NewID(0, 1))
	if err != nil {
		t.Fatalf("subpop name: %v", err)
	}
	if name != "FEMALE" {
		t.Fatalf("unexpected name %q", name)
	}
	if _, err := p.SubPopName(vsp.NewID(0, 5)); err == nil {
		t.Fatal("expected error for missing VSP")
	}
}

func newTestPopForBench(b *testing.B) *pop.Population {
	p, err := pop.New(pop.Config{ID: "bench", Ploidy: 2, Loci: 2, SubPopSizes: []int{10000}})
	if err != nil {
		b.Fatalf("new population: %v", err)
	}
	return p
}

func BenchmarkSexActivate(b *testing.B) {
	p := newTestPopForBench(b)
	s, _ := vsp.NewSexSplitter(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Activate(p, 0, 0); err != nil {
			b.Fatal(err)
		}
		if err := s.Deactivate(0); err != nil {
			b.Fatal(err)
		}
	}
}
