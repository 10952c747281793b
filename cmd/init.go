package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/routesim/state"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Writes a default simulation config",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(configPath); err == nil && !force {
			return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
		}
		cfg := state.DefaultSimCfg()
		algo, _ := cmd.Flags().GetString("algo")
		cfg.Algorithm = state.Algorithm(algo)
		if err := state.AlgorithmValidator(cfg.Algorithm); err != nil {
			return err
		}
		if err := state.WriteSimConfig(configPath, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", configPath)
		return nil
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("algo", "a", string(state.DefaultAlgorithm), "routing algorithm, ls or dv")
	initCmd.Flags().Bool("force", false, "overwrite an existing config")
}
