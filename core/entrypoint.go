package core

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path"
	"slices"

	"github.com/encodeous/routesim/perf"
	"github.com/encodeous/routesim/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the console logger, fanning out to cfg.LogPath when set. The
// returned closer releases the log file.
func NewLogger(cfg state.SimCfg, console io.Writer) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(console, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: string(cfg.Algorithm),
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	closer := func() error { return nil }
	if cfg.LogPath != "" {
		err := os.MkdirAll(path.Dir(cfg.LogPath), 0700)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.LogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// LoadSimulator reads the three input files named by cfg and prepares a Simulator.
func LoadSimulator(cfg state.SimCfg) (*Simulator, error) {
	links, err := state.ReadLinksFile(cfg.Topology)
	if err != nil {
		return nil, err
	}
	topo, err := state.BuildTopology(links)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Topology, err)
	}
	changes, err := state.ReadLinksFile(cfg.Changes)
	if err != nil {
		return nil, err
	}
	msgs, err := state.ReadMessagesFile(cfg.Messages)
	if err != nil {
		return nil, err
	}
	algo, err := NewAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		Topology:  topo,
		Algorithm: algo,
		Changes:   changes,
		Messages:  msgs,
	}, nil
}

// Start runs one simulation described by cfg and writes the report to cfg.Output.
func Start(cfg state.SimCfg, logger *slog.Logger) error {
	sim, err := LoadSimulator(cfg)
	if err != nil {
		return err
	}
	logger.Info("loaded network",
		"nodes", sim.Topology.NodeCount(),
		"links", len(sim.Topology.Links()),
		"changes", len(sim.Changes),
		"messages", len(sim.Messages))

	report := NewReport(cfg.Algorithm, logger)
	err = sim.Run(report)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	err = report.Write(f, cfg.Format)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logger.Info("report written", "path", cfg.Output, "sections", len(report.Sections))

	if cfg.Stats {
		stats := perf.Snapshot()
		for _, k := range slices.Sorted(maps.Keys(stats)) {
			logger.Info("metric", "name", k, "value", stats[k])
		}
	}
	return nil
}
