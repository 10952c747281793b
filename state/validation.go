package state

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func InputValidator(name, s string) error {
	if s == "" {
		return fmt.Errorf("%s file must be set", name)
	}
	st, err := os.Stat(s)
	if err != nil {
		return fmt.Errorf("%s file: %w", name, err)
	}
	if st.IsDir() {
		return fmt.Errorf("%s file %s is a directory", name, s)
	}
	return nil
}

func AlgorithmValidator(a Algorithm) error {
	switch a {
	case AlgoLinkState, AlgoDistanceVector:
		return nil
	}
	return fmt.Errorf("unknown algorithm %q, must be %q or %q", a, AlgoLinkState, AlgoDistanceVector)
}

func FormatValidator(f ReportFormat) error {
	switch f {
	case FormatText, FormatYAML:
		return nil
	}
	return fmt.Errorf("unknown report format %q, must be %q or %q", f, FormatText, FormatYAML)
}

func SimConfigValidator(cfg *SimCfg) error {
	if err := AlgorithmValidator(cfg.Algorithm); err != nil {
		return err
	}
	if err := FormatValidator(cfg.Format); err != nil {
		return err
	}
	if err := InputValidator("topology", cfg.Topology); err != nil {
		return err
	}
	if err := InputValidator("changes", cfg.Changes); err != nil {
		return err
	}
	if err := InputValidator("messages", cfg.Messages); err != nil {
		return err
	}
	if err := PathValidator(cfg.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if cfg.LogPath != "" {
		if err := PathValidator(cfg.LogPath); err != nil {
			return fmt.Errorf("log_path: %w", err)
		}
	}
	return nil
}
