package storage

import (
	"context"

	"gonos/internal/model"
)

// Store persists population snapshots and split reports. Virtual
// subpopulation definitions are never persisted; they are rebuilt from
// configuration each run.
type Store interface {
	Init(ctx context.Context) error
	SavePopulation(ctx context.Context, population model.PopulationRecord) error
	GetPopulation(ctx context.Context, id string) (model.PopulationRecord, bool, error)
	ListPopulations(ctx context.Context) ([]string, error)
	DeletePopulation(ctx context.Context, id string) error
	SaveSplitReport(ctx context.Context, report model.SplitReportRecord) error
	GetSplitReport(ctx context.Context, populationID string, subPop int) (model.SplitReportRecord, bool, error)
}
