package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"gonos/internal/pop"
	"gonos/internal/stats"
	"gonos/internal/storage"
	"gonos/internal/vsp"
)

const (
	shellHistoryFile = ".gonos_history"
	shellPrompt      = "gonos> "
)

var shellHelp = `
shell commands:
  pops                     list stored populations
  use <id>                 load a population from the store
  splitter <config.json>   build a splitter from config and assign it
  vsps                     list the VSPs of each subpopulation
  size <sp> [vsp]          size of a (virtual) subpopulation
  activate <sp> <vsp>      activate a VSP (set visibility)
  visible <sp>             list visible individual indices
  deactivate <sp>          restore full visibility
  report <sp>              whole-subpop and per-VSP summary rows
  help                     show this help
  quit                     exit the shell
`

var shellCommands = []string{
	"pops", "use", "splitter", "vsps", "size",
	"activate", "visible", "deactivate", "report", "help", "quit",
}

type shellState struct {
	store   storage.Store
	current *pop.Population
}

func runShell(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	popID := fs.String("pop", "", "population id to load on startup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	state := &shellState{store: store}
	if *popID != "" {
		if err := state.load(ctx, *popID); err != nil {
			return err
		}
		fmt.Printf("loaded population=%s\n", *popID)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, cmd := range shellCommands {
			if strings.HasPrefix(cmd, strings.ToLower(line)) {
				out = append(out, cmd)
			}
		}
		return out
	})

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, shellHistoryFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("gonos shell. Ctrl+D or quit to exit, help for commands.")
	for {
		line, err := ln.Prompt(shellPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		fields := strings.Fields(line)
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := state.dispatch(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func (s *shellState) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Print(shellHelp)
		return nil
	case "pops":
		ids, err := s.store.ListPopulations(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	case "use":
		if len(args) != 1 {
			return fmt.Errorf("usage: use <id>")
		}
		return s.load(ctx, args[0])
	case "splitter":
		if len(args) != 1 {
			return fmt.Errorf("usage: splitter <config.json>")
		}
		return s.assignSplitter(args[0])
	case "vsps":
		return s.listVSPs()
	case "size":
		return s.size(args)
	case "activate":
		return s.activate(args)
	case "visible":
		return s.visible(args)
	case "deactivate":
		return s.deactivate(args)
	case "report":
		return s.report(args)
	default:
		return fmt.Errorf("unknown command: %s (try help)", cmd)
	}
}

func (s *shellState) load(ctx context.Context, id string) error {
	rec, ok, err := s.store.GetPopulation(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("population not found: %s", id)
	}
	p, err := pop.FromRecord(rec)
	if err != nil {
		return err
	}
	s.current = p
	return nil
}

func (s *shellState) need() (*pop.Population, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no population loaded (use <id>)")
	}
	return s.current, nil
}

func (s *shellState) assignSplitter(path string) error {
	p, err := s.need()
	if err != nil {
		return err
	}
	spec, err := loadSplitterSpec(path)
	if err != nil {
		return err
	}
	splitter, err := spec.Build(p.Ploidy())
	if err != nil {
		return err
	}
	p.SetSplitter(splitter)
	fmt.Printf("assigned %s splitter with %d VSPs\n", spec.Kind, splitter.NumVirtualSubPops())
	return nil
}

func (s *shellState) listVSPs() error {
	p, err := s.need()
	if err != nil {
		return err
	}
	for sp := 0; sp < p.NumSubPops(); sp++ {
		fmt.Printf("subpop %d size=%d\n", sp, p.SubPopSize(sp))
		splitter := p.Splitter()
		if splitter == nil {
			continue
		}
		for v := 0; v < splitter.NumVirtualSubPops(); v++ {
			size, err := splitter.Size(p, sp, v)
			if err != nil {
				return err
			}
			fmt.Printf("  vsp %d %-24s size=%d\n", v, splitter.Name(v), size)
		}
	}
	return nil
}

func (s *shellState) size(args []string) error {
	p, err := s.need()
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: size <sp> [vsp]")
	}
	sp, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if sp < 0 || sp >= p.NumSubPops() {
			return fmt.Errorf("subpopulation %d does not exist", sp)
		}
		fmt.Println(p.SubPopSize(sp))
		return nil
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	splitter := p.Splitter()
	if splitter == nil {
		return fmt.Errorf("no splitter assigned")
	}
	size, err := splitter.Size(p, sp, v)
	if err != nil {
		return err
	}
	fmt.Println(size)
	return nil
}

func (s *shellState) activate(args []string) error {
	p, err := s.need()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: activate <sp> <vsp>")
	}
	sp, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return err
	}
	splitter := p.Splitter()
	if splitter == nil {
		return fmt.Errorf("no splitter assigned")
	}
	if err := splitter.Activate(p, sp, v); err != nil {
		return err
	}
	fmt.Printf("activated %s\n", vsp.NewID(sp, v))
	return nil
}

func (s *shellState) visible(args []string) error {
	p, err := s.need()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: visible <sp>")
	}
	sp, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	if sp < 0 || sp >= p.NumSubPops() {
		return fmt.Errorf("subpopulation %d does not exist", sp)
	}
	indices := p.VisibleIndices(sp)
	fmt.Printf("%d visible: %v\n", len(indices), indices)
	return nil
}

func (s *shellState) deactivate(args []string) error {
	p, err := s.need()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: deactivate <sp>")
	}
	sp, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	splitter := p.Splitter()
	if splitter == nil {
		return fmt.Errorf("no splitter assigned")
	}
	return splitter.Deactivate(sp)
}

func (s *shellState) report(args []string) error {
	p, err := s.need()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: report <sp>")
	}
	sp, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	rows, err := stats.Report(p, sp)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Printf("%-10s %-24s size=%d males=%d affected=%d\n", row.ID, row.Name, row.Size, row.Males, row.Affected)
	}
	return nil
}
