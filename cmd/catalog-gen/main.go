package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/signalsfoundry/impact-simulator/internal/config"
	"github.com/signalsfoundry/impact-simulator/internal/logging"
	"github.com/signalsfoundry/impact-simulator/internal/neo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], logging.NewFromEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-gen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, log logging.Logger) error {
	fs := flag.NewFlagSet("catalog-gen", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a JSON config file")
	input := fs.String("input", "", "Read a saved NeoWs browse response instead of calling the API")
	output := fs.String("out", "", "Output path for the catalog document (overrides neo.output)")
	page := fs.Int("page", 0, "NeoWs browse page to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *output != "" {
		cfg.Neo.Output = *output
	}

	var resp *neo.BrowseResponse
	if *input != "" {
		resp, err = readSaved(*input)
	} else {
		log.Info(ctx, "fetching near-Earth objects", logging.String("base_url", cfg.Neo.BaseURL), logging.Int("page", *page))
		resp, err = neo.New(cfg.Neo.BaseURL, cfg.Neo.APIKey, cfg.Neo.Timeout).Browse(ctx, *page)
	}
	if err != nil {
		return err
	}
	log.Info(ctx, "near-Earth objects received", logging.Int("count", len(resp.NearEarthObjects)))

	doc, err := neo.BuildCatalog(resp, cfg.Neo.OrbitPoints)
	if err != nil {
		return err
	}

	if err := writeJSON(cfg.Neo.Output, doc); err != nil {
		return err
	}
	log.Info(ctx, "catalog written",
		logging.String("path", cfg.Neo.Output),
		logging.Int("asteroids", len(doc.Asteroids)),
		logging.Int("skipped", len(resp.NearEarthObjects)-len(doc.Asteroids)),
	)
	return nil
}

func readSaved(path string) (*neo.BrowseResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open saved response: %w", err)
	}
	defer f.Close()
	return neo.DecodeBrowse(f)
}

// writeJSON writes v next to path first and renames it into place, so a
// failed run never leaves a truncated catalog behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install catalog: %w", err)
	}
	return nil
}
