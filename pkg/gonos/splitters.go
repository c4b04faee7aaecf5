package gonos

import (
	"fmt"

	"gonos/internal/model"
	"gonos/internal/vsp"
)

// SplitterSpec is the declarative form of a splitter, suitable for JSON
// config files. Composite kinds nest through Children.
type SplitterSpec struct {
	Kind string `json:"kind"`

	// Info splitters. Exactly one of Values, Cutoffs or Ranges is set.
	Field   string       `json:"field,omitempty"`
	Values  []float64    `json:"values,omitempty"`
	Cutoffs []float64    `json:"cutoffs,omitempty"`
	Ranges  [][2]float64 `json:"ranges,omitempty"`

	Proportions []float64 `json:"proportions,omitempty"`
	IndexRanges [][2]int  `json:"index_ranges,omitempty"`

	// Genotype splitters.
	Loci    []int            `json:"loci,omitempty"`
	Alleles [][]model.Allele `json:"alleles,omitempty"`
	Phase   bool             `json:"phase,omitempty"`

	Names []string `json:"names,omitempty"`

	// Composite splitters.
	Children []SplitterSpec `json:"children,omitempty"`
	VSPMap   [][]int        `json:"vsp_map,omitempty"`
}

// Build constructs the splitter the spec describes. Genotype splitters need
// the population's ploidy, so it is threaded through; other kinds ignore it.
func (s SplitterSpec) Build(ploidy int) (vsp.Splitter, error) {
	switch s.Kind {
	case "sex":
		return vsp.NewSexSplitter(s.Names)
	case "affection":
		return vsp.NewAffectionSplitter(s.Names)
	case "info":
		ranges := make([]vsp.InfoRange, len(s.Ranges))
		for i, r := range s.Ranges {
			ranges[i] = vsp.InfoRange{Lo: r[0], Hi: r[1]}
		}
		return vsp.NewInfoSplitter(s.Field, s.Values, s.Cutoffs, ranges, s.Names)
	case "proportion":
		return vsp.NewProportionSplitter(s.Proportions, s.Names)
	case "range":
		ranges := make([]vsp.IndexRange, len(s.IndexRanges))
		for i, r := range s.IndexRanges {
			ranges[i] = vsp.IndexRange{Lo: r[0], Hi: r[1]}
		}
		return vsp.NewRangeSplitter(ranges, s.Names)
	case "genotype":
		return vsp.NewGenotypeSplitter(s.Loci, s.Alleles, ploidy, s.Phase, s.Names)
	case "combined":
		children, err := s.buildChildren(ploidy)
		if err != nil {
			return nil, err
		}
		return vsp.NewCombinedSplitter(children, s.VSPMap, s.Names)
	case "product":
		children, err := s.buildChildren(ploidy)
		if err != nil {
			return nil, err
		}
		return vsp.NewProductSplitter(children, s.Names)
	case "":
		return nil, fmt.Errorf("splitter kind is required")
	default:
		return nil, fmt.Errorf("unsupported splitter kind: %s", s.Kind)
	}
}

func (s SplitterSpec) buildChildren(ploidy int) ([]vsp.Splitter, error) {
	if len(s.Children) == 0 {
		return nil, fmt.Errorf("%s splitter requires children", s.Kind)
	}
	children := make([]vsp.Splitter, len(s.Children))
	for i, child := range s.Children {
		built, err := child.Build(ploidy)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children[i] = built
	}
	return children, nil
}
