package stats

import (
	"math"
	"testing"

	"gonos/internal/model"
	"gonos/internal/pop"
	"gonos/internal/vsp"
)

func newStatsPop(t *testing.T) *pop.Population {
	t.Helper()
	p, err := pop.New(pop.Config{
		ID:          "stats",
		Ploidy:      2,
		Loci:        1,
		InfoFields:  []string{"x"},
		SubPopSizes: []int{6},
	})
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	xIdx, _ := p.InfoIdx("x")
	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			p.SetSex(0, i, model.Male)
		} else {
			p.SetSex(0, i, model.Female)
		}
		p.SetAffected(0, i, i < 2)
		p.SetInfoAt(0, i, xIdx, float64(i))
		if i >= 3 {
			p.SetAllele(0, i, 0, 0, 1)
		}
	}
	return p
}

func TestSummarizeWholeSubPop(t *testing.T) {
	p := newStatsPop(t)
	s, err := Summarize(p, vsp.WholeSubPop(0))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Size != 6 || s.Males != 3 || s.Affected != 2 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if math.Abs(s.Fields[0].Mean-2.5) > 1e-12 {
		t.Fatalf("mean of 0..5 must be 2.5, got %v", s.Fields[0].Mean)
	}
	// 3 of 12 allele copies are allele 1.
	if got := s.Alleles[0].Frequencies[1]; math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("allele 1 frequency: got %v want 0.25", got)
	}
	if got := s.Alleles[0].Frequencies[0]; math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("allele 0 frequency: got %v want 0.75", got)
	}
}

func TestSummarizeVSPRestoresVisibility(t *testing.T) {
	p := newStatsPop(t)
	sex, _ := vsp.NewSexSplitter(nil)
	p.SetSplitter(sex)

	s, err := Summarize(p, vsp.NewID(0, 0))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Name != "MALE" || s.Size != 3 || s.Males != 3 {
		t.Fatalf("unexpected male summary: %+v", s)
	}
	// Mean of x over males 0, 2, 4.
	if math.Abs(s.Fields[0].Mean-2) > 1e-12 {
		t.Fatalf("male mean: got %v want 2", s.Fields[0].Mean)
	}
	for i := 0; i < p.SubPopSize(0); i++ {
		if !p.Visible(0, i) {
			t.Fatalf("individual %d left invisible", i)
		}
	}
}

func TestReportListsWholeThenVSPs(t *testing.T) {
	p := newStatsPop(t)
	affection, _ := vsp.NewAffectionSplitter(nil)
	p.SetSplitter(affection)

	report, err := Report(p, 0)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report) != 3 {
		t.Fatalf("expected whole + 2 VSP rows, got %d", len(report))
	}
	if report[0].Size != 6 || report[1].Size != 4 || report[2].Size != 2 {
		t.Fatalf("unexpected sizes: %d, %d, %d", report[0].Size, report[1].Size, report[2].Size)
	}
	if report[2].Name != "AFFECTED" || report[2].Affected != 2 {
		t.Fatalf("unexpected affected row: %+v", report[2])
	}

	if _, err := Report(p, 7); err == nil {
		t.Fatal("expected error for missing subpopulation")
	}
}

func TestSummarizeEmptyVSP(t *testing.T) {
	p := newStatsPop(t)
	info, err := vsp.NewInfoSplitter("x", []float64{99}, nil, nil, nil)
	if err != nil {
		t.Fatalf("new info splitter: %v", err)
	}
	p.SetSplitter(info)

	s, err := Summarize(p, vsp.NewID(0, 0))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Size != 0 {
		t.Fatalf("expected empty VSP, got size %d", s.Size)
	}
	if s.Fields[0].Mean != 0 || s.Fields[0].StdDev != 0 {
		t.Fatalf("empty VSP moments must be zero: %+v", s.Fields[0])
	}
}
