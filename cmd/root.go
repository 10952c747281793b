package cmd

import (
	"os"

	"github.com/encodeous/routesim/state"
	"github.com/spf13/cobra"
)

var configPath = state.DefaultConfigPath

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "routesim",
	Short: "Offline link-state and distance-vector routing simulator",
	Long: `routesim computes the forwarding table of every router in a small static network,
traces messages through it, and replays a list of link-cost changes, recomputing the
forwarding state after each one.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Setup",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "simulation config")
}
