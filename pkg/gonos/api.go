// Package gonos is the embedding surface of the splitting engine: a
// store-backed client that imports population snapshots, assigns splitters,
// produces split reports and runs fitness operators.
package gonos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonos/internal/fitness"
	"gonos/internal/model"
	"gonos/internal/pop"
	"gonos/internal/stats"
	"gonos/internal/storage"
	"gonos/internal/vsp"
)

const defaultDBPath = "gonos.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

type ImportSummary struct {
	PopulationID string
	SubPopSizes  []int
	TotalSize    int
}

type SplitRequest struct {
	PopulationID string
	SubPop       int
	Splitter     SplitterSpec
	// Persist writes the report to the store under (population, subpop).
	Persist bool
}

type StatsRequest struct {
	PopulationID  string
	Splitter      *SplitterSpec
	SubPop        int
	VirtualSubPop int
}

type FitnessRequest struct {
	PopulationID string
	Splitter     *SplitterSpec
	Calculator   CalculatorSpec
	Field        string
	// SubPops lists (subpop, vsp) targets; vsp -1 means the whole
	// subpopulation. Empty means every subpopulation, expanded against
	// the assigned splitter.
	SubPops    [][2]int
	Generation int
	// Save writes the scored population back to the store.
	Save bool
}

type FitnessSummary struct {
	PopulationID string
	Field        string
	Scored       vsp.List
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// ImportPopulation reads a population snapshot from a JSON file, validates
// it and saves it under its declared id.
func (c *Client) ImportPopulation(ctx context.Context, path string) (ImportSummary, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return ImportSummary{}, err
	}
	var rec model.PopulationRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return ImportSummary{}, fmt.Errorf("decode population snapshot: %w", err)
	}
	// Unstamped snapshots are accepted; hand-written files rarely carry
	// version fields. Anything else must match the current versions.
	if rec.SchemaVersion != 0 || rec.CodecVersion != 0 {
		if rec.SchemaVersion != storage.CurrentSchemaVersion || rec.CodecVersion != storage.CurrentCodecVersion {
			return ImportSummary{}, storage.ErrVersionMismatch
		}
	}
	if rec.ID == "" {
		return ImportSummary{}, fmt.Errorf("population snapshot has no id")
	}
	p, err := pop.FromRecord(rec)
	if err != nil {
		return ImportSummary{}, err
	}
	out := p.Record()
	storage.Stamp(&out.VersionedRecord)
	if err := c.store.SavePopulation(ctx, out); err != nil {
		return ImportSummary{}, err
	}
	summary := ImportSummary{PopulationID: p.ID(), TotalSize: p.TotalSize()}
	for sp := 0; sp < p.NumSubPops(); sp++ {
		summary.SubPopSizes = append(summary.SubPopSizes, p.SubPopSize(sp))
	}
	return summary, nil
}

func (c *Client) Populations(ctx context.Context) ([]string, error) {
	return c.store.ListPopulations(ctx)
}

func (c *Client) DeletePopulation(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("population id is required")
	}
	return c.store.DeletePopulation(ctx, id)
}

// SplitReport assigns the requested splitter to the stored population and
// summarizes one subpopulation: the whole-subpopulation row first, then one
// row per VSP.
func (c *Client) SplitReport(ctx context.Context, req SplitRequest) (model.SplitReportRecord, error) {
	p, err := c.loadPopulation(ctx, req.PopulationID)
	if err != nil {
		return model.SplitReportRecord{}, err
	}
	splitter, err := req.Splitter.Build(p.Ploidy())
	if err != nil {
		return model.SplitReportRecord{}, err
	}
	p.SetSplitter(splitter)

	rows, err := stats.Report(p, req.SubPop)
	if err != nil {
		return model.SplitReportRecord{}, err
	}
	report := model.SplitReportRecord{
		PopulationID: p.ID(),
		SubPop:       req.SubPop,
		SubPopSize:   p.SubPopSize(req.SubPop),
	}
	for _, row := range rows {
		report.Summaries = append(report.Summaries, model.VSPSummaryRecord{
			VirtualSubPop: row.ID.VirtualSubPop(),
			Name:          row.Name,
			Size:          row.Size,
		})
	}
	storage.Stamp(&report.VersionedRecord)
	if req.Persist {
		if err := c.store.SaveSplitReport(ctx, report); err != nil {
			return model.SplitReportRecord{}, err
		}
	}
	return report, nil
}

// SplitReports returns the persisted report for one subpopulation.
func (c *Client) SplitReports(ctx context.Context, populationID string, subPop int) (model.SplitReportRecord, error) {
	report, ok, err := c.store.GetSplitReport(ctx, populationID, subPop)
	if err != nil {
		return model.SplitReportRecord{}, err
	}
	if !ok {
		return model.SplitReportRecord{}, fmt.Errorf("no split report for population %s subpopulation %d", populationID, subPop)
	}
	return report, nil
}

// Stats summarizes one (virtual) subpopulation: size, sex and affection
// counts, information field moments and allele frequencies.
func (c *Client) Stats(ctx context.Context, req StatsRequest) (stats.VSPSummary, error) {
	p, err := c.loadPopulation(ctx, req.PopulationID)
	if err != nil {
		return stats.VSPSummary{}, err
	}
	if req.Splitter != nil {
		splitter, err := req.Splitter.Build(p.Ploidy())
		if err != nil {
			return stats.VSPSummary{}, err
		}
		p.SetSplitter(splitter)
	}
	return stats.Summarize(p, vsp.NewID(req.SubPop, req.VirtualSubPop))
}

// ApplyFitness scores the selected (virtual) subpopulations into an
// information field.
func (c *Client) ApplyFitness(ctx context.Context, req FitnessRequest) (FitnessSummary, error) {
	p, err := c.loadPopulation(ctx, req.PopulationID)
	if err != nil {
		return FitnessSummary{}, err
	}
	if req.Splitter != nil {
		splitter, err := req.Splitter.Build(p.Ploidy())
		if err != nil {
			return FitnessSummary{}, err
		}
		p.SetSplitter(splitter)
	}
	calc, err := req.Calculator.Build()
	if err != nil {
		return FitnessSummary{}, err
	}

	subPops := vsp.All()
	if len(req.SubPops) > 0 {
		handles := make([]vsp.ID, len(req.SubPops))
		for i, pair := range req.SubPops {
			handles[i] = vsp.NewID(pair[0], pair[1])
		}
		subPops = vsp.NewList(handles...)
	}
	op, err := fitness.NewOperator(calc, req.Field, subPops)
	if err != nil {
		return FitnessSummary{}, err
	}
	if err := op.Apply(p, req.Generation); err != nil {
		return FitnessSummary{}, err
	}

	if req.Save {
		out := p.Record()
		storage.Stamp(&out.VersionedRecord)
		if err := c.store.SavePopulation(ctx, out); err != nil {
			return FitnessSummary{}, err
		}
	}
	field := req.Field
	if field == "" {
		field = fitness.DefaultField
	}
	return FitnessSummary{PopulationID: p.ID(), Field: field, Scored: subPops}, nil
}

func (c *Client) loadPopulation(ctx context.Context, id string) (*pop.Population, error) {
	if id == "" {
		return nil, errors.New("population id is required")
	}
	rec, ok, err := c.store.GetPopulation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("population not found: %s", id)
	}
	return pop.FromRecord(rec)
}
