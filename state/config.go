package state

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type Algorithm string

const (
	AlgoLinkState      Algorithm = "ls"
	AlgoDistanceVector Algorithm = "dv"
)

type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatYAML ReportFormat = "yaml"
)

// SimCfg describes one simulation run
type SimCfg struct {
	Algorithm Algorithm    `yaml:"algorithm"`
	Topology  string       `yaml:"topology"`           // initial links, "<src> <dest> <cost>" per line
	Changes   string       `yaml:"changes"`            // link changes applied in order, same format as Topology
	Messages  string       `yaml:"messages"`           // "<src> <dest> <text>" per line
	Output    string       `yaml:"output,omitempty"`   // report destination, defaults to output.txt
	Format    ReportFormat `yaml:"format,omitempty"`   // text or yaml
	LogPath   string       `yaml:"log_path,omitempty"` // if not empty, logs are also written to this file
	Verbose   bool         `yaml:"verbose,omitempty"`  // debug logging
	Stats     bool         `yaml:"stats,omitempty"`    // log engine metrics after the run
}

func DefaultSimCfg() SimCfg {
	return SimCfg{
		Algorithm: DefaultAlgorithm,
		Topology:  "topology.txt",
		Changes:   "changes.txt",
		Messages:  "messages.txt",
		Output:    DefaultOutputPath,
		Format:    DefaultFormat,
	}
}

// ReadSimConfig decodes a config file, filling unset fields with defaults.
func ReadSimConfig(path string) (*SimCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg SimCfg
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

func (c *SimCfg) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = DefaultAlgorithm
	}
	if c.Output == "" {
		c.Output = DefaultOutputPath
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
}

func WriteSimConfig(path string, cfg SimCfg) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0644)
}
