package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/encodeous/routesim/core"
	"github.com/encodeous/routesim/state"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file if present and lets positional arguments and
// explicitly set flags override it.
func loadConfig(cmd *cobra.Command, args []string) (*state.SimCfg, error) {
	cfg, err := state.ReadSimConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		if len(args) != 3 {
			return nil, fmt.Errorf("no config at %s, usage: %s", configPath, cmd.UseLine())
		}
		def := state.DefaultSimCfg()
		cfg = &def
	} else if err != nil {
		return nil, err
	}

	switch len(args) {
	case 0:
	case 3:
		cfg.Topology, cfg.Changes, cfg.Messages = args[0], args[1], args[2]
	default:
		return nil, fmt.Errorf("expected <topofile> <changesfile> <messagefile>, got %d arguments", len(args))
	}

	flags := cmd.Flags()
	if flags.Changed("algo") {
		algo, _ := flags.GetString("algo")
		cfg.Algorithm = state.Algorithm(algo)
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		format, _ := flags.GetString("format")
		cfg.Format = state.ReportFormat(format)
	}
	if flags.Changed("log") {
		cfg.LogPath, _ = flags.GetString("log")
	}
	if ok, _ := flags.GetBool("verbose"); ok {
		cfg.Verbose = true
	}
	if ok, _ := flags.GetBool("stats"); ok {
		cfg.Stats = true
	}
	return cfg, nil
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [topofile changesfile messagefile]",
	Short: "Run a simulation",
	Long: `Computes forwarding tables and message paths for the initial topology and after every
change, and writes them to the output file. Inputs are taken from the config file unless
all three files are given as arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		err = state.SimConfigValidator(cfg)
		if err != nil {
			return err
		}

		logger, closeLog, err := core.NewLogger(*cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()

		err = core.Start(*cfg, logger)
		if err != nil {
			logger.Error("simulation failed", "error", err)
		}
		return err
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("algo", "a", string(state.DefaultAlgorithm), "routing algorithm, ls (link-state) or dv (distance-vector)")
	runCmd.Flags().StringP("output", "o", state.DefaultOutputPath, "report output path")
	runCmd.Flags().StringP("format", "f", string(state.DefaultFormat), "report format, text or yaml")
	runCmd.Flags().StringP("log", "l", "", "also write logs to this file")
	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().BoolP("stats", "s", false, "log engine metrics after the run")
}
