package main

import (
	"encoding/json"
	"fmt"
	"os"

	api "gonos/pkg/gonos"
)

// fitnessConfig is the on-disk form of a fitness run: the calculator, an
// optional splitter and the (subpop, vsp) targets to score.
type fitnessConfig struct {
	Splitter   *api.SplitterSpec  `json:"splitter,omitempty"`
	Calculator api.CalculatorSpec `json:"calculator"`
	SubPops    [][2]int           `json:"sub_pops,omitempty"`
}

func loadSplitterSpec(path string) (api.SplitterSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.SplitterSpec{}, err
	}
	var spec api.SplitterSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return api.SplitterSpec{}, fmt.Errorf("load splitter config: %w", err)
	}
	if spec.Kind == "" {
		return api.SplitterSpec{}, fmt.Errorf("load splitter config: kind is required")
	}
	return spec, nil
}

func loadFitnessConfig(path string) (fitnessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fitnessConfig{}, err
	}
	var cfg fitnessConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fitnessConfig{}, fmt.Errorf("load fitness config: %w", err)
	}
	if cfg.Calculator.Kind == "" {
		return fitnessConfig{}, fmt.Errorf("load fitness config: calculator kind is required")
	}
	return cfg, nil
}
