package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Sex of an individual.
type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Male {
		return "MALE"
	}
	return "FEMALE"
}

// Allele is a single allele value at one (locus, ploidy slot).
type Allele int

// IndividualRecord is the snapshot form of one individual. Genotype is laid
// out ploidy-slot major: slot p, locus l lives at index p*loci+l.
type IndividualRecord struct {
	Sex      Sex       `json:"sex"`
	Affected bool      `json:"affected"`
	Genotype []Allele  `json:"genotype"`
	Info     []float64 `json:"info"`
}

// PopulationRecord is the snapshot form of a whole population.
type PopulationRecord struct {
	VersionedRecord
	ID         string               `json:"id"`
	Ploidy     int                  `json:"ploidy"`
	Loci       int                  `json:"loci"`
	InfoFields []string             `json:"info_fields"`
	SubPops    [][]IndividualRecord `json:"sub_pops"`
}

// VSPSummaryRecord is one row of a persisted split report.
type VSPSummaryRecord struct {
	VirtualSubPop int    `json:"virtual_sub_pop"`
	Name          string `json:"name"`
	Size          int    `json:"size"`
}

// SplitReportRecord records the outcome of splitting one subpopulation.
type SplitReportRecord struct {
	VersionedRecord
	PopulationID string             `json:"population_id"`
	SubPop       int                `json:"sub_pop"`
	SubPopSize   int                `json:"sub_pop_size"`
	Summaries    []VSPSummaryRecord `json:"summaries"`
}
