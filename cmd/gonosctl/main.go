package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gonos/internal/model"
	api "gonos/pkg/gonos"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "populations":
		return runPopulations(ctx, args[1:])
	case "split":
		return runSplit(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "stats":
		return runStats(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	case "shell":
		return runShell(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "gonos.db", "sqlite database path")
	return storeKind, dbPath
}

func newClient(storeKind, dbPath string) (*api.Client, error) {
	return api.New(api.Options{StoreKind: storeKind, DBPath: dbPath})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	snapshotPath := fs.String("file", "", "population snapshot JSON path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *snapshotPath == "" {
		return usageError("import requires -file")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.ImportPopulation(ctx, *snapshotPath)
	if err != nil {
		return err
	}
	fmt.Printf("imported population=%s subpops=%v total=%d\n", summary.PopulationID, summary.SubPopSizes, summary.TotalSize)
	return nil
}

func runPopulations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("populations", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	ids, err := client.Populations(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runSplit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	popID := fs.String("pop", "", "population id")
	subPop := fs.Int("subpop", 0, "subpopulation index")
	configPath := fs.String("config", "", "splitter config JSON path")
	persist := fs.Bool("persist", false, "persist the report to the store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *popID == "" || *configPath == "" {
		return usageError("split requires -pop and -config")
	}

	spec, err := loadSplitterSpec(*configPath)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	report, err := client.SplitReport(ctx, api.SplitRequest{
		PopulationID: *popID,
		SubPop:       *subPop,
		Splitter:     spec,
		Persist:      *persist,
	})
	if err != nil {
		return err
	}
	printReport(report.SubPop, report.SubPopSize, report.Summaries)
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	popID := fs.String("pop", "", "population id")
	subPop := fs.Int("subpop", 0, "subpopulation index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *popID == "" {
		return usageError("report requires -pop")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	report, err := client.SplitReports(ctx, *popID, *subPop)
	if err != nil {
		return err
	}
	printReport(report.SubPop, report.SubPopSize, report.Summaries)
	return nil
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	popID := fs.String("pop", "", "population id")
	subPop := fs.Int("subpop", 0, "subpopulation index")
	virtual := fs.Int("vsp", -1, "virtual subpopulation index (-1 for the whole subpopulation)")
	configPath := fs.String("config", "", "optional splitter config JSON path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *popID == "" {
		return usageError("stats requires -pop")
	}

	req := api.StatsRequest{PopulationID: *popID, SubPop: *subPop, VirtualSubPop: *virtual}
	if *configPath != "" {
		spec, err := loadSplitterSpec(*configPath)
		if err != nil {
			return err
		}
		req.Splitter = &spec
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Stats(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s size=%d males=%d affected=%d\n", summary.ID, summary.Name, summary.Size, summary.Males, summary.Affected)
	for _, field := range summary.Fields {
		fmt.Printf("  field %s mean=%.6g stddev=%.6g\n", field.Field, field.Mean, field.StdDev)
	}
	for _, locus := range summary.Alleles {
		parts := make([]string, 0, len(locus.Frequencies))
		for allele, freq := range locus.Frequencies {
			parts = append(parts, fmt.Sprintf("%d:%.4f", allele, freq))
		}
		fmt.Printf("  locus %d %s\n", locus.Locus, strings.Join(parts, " "))
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	popID := fs.String("pop", "", "population id")
	configPath := fs.String("config", "", "fitness config JSON path")
	field := fs.String("field", "", "target information field (default fitness)")
	generation := fs.Int("gen", 0, "generation number passed to the calculator")
	save := fs.Bool("save", true, "save the scored population back to the store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *popID == "" || *configPath == "" {
		return usageError("fitness requires -pop and -config")
	}

	cfg, err := loadFitnessConfig(*configPath)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.ApplyFitness(ctx, api.FitnessRequest{
		PopulationID: *popID,
		Splitter:     cfg.Splitter,
		Calculator:   cfg.Calculator,
		Field:        *field,
		SubPops:      cfg.SubPops,
		Generation:   *generation,
		Save:         *save,
	})
	if err != nil {
		return err
	}
	fmt.Printf("scored population=%s field=%s targets=%s\n", summary.PopulationID, summary.Field, summary.Scored)
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	popID := fs.String("pop", "", "population id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *popID == "" {
		return usageError("delete requires -pop")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	if err := client.DeletePopulation(ctx, *popID); err != nil {
		return err
	}
	fmt.Printf("deleted population=%s\n", *popID)
	return nil
}

func printReport(subPop, size int, rows []model.VSPSummaryRecord) {
	fmt.Printf("subpop %d size=%d\n", subPop, size)
	for _, row := range rows {
		fmt.Printf("  vsp %d %-24s size=%d\n", row.VirtualSubPop, row.Name, row.Size)
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: gonosctl <init|import|populations|split|report|stats|fitness|delete|shell> [flags]", msg)
}
