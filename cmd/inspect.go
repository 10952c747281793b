package cmd

import (
	"os"

	"github.com/encodeous/routesim/core"
	"github.com/encodeous/routesim/state"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect <topofile>",
	Aliases: []string{"i"},
	Short:   "Prints the link matrix and the routing state computed from it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, _ := cmd.Flags().GetString("algo")
		if err := state.AlgorithmValidator(state.Algorithm(algo)); err != nil {
			return err
		}
		links, err := state.ReadLinksFile(args[0])
		if err != nil {
			return err
		}
		topo, err := state.BuildTopology(links)
		if err != nil {
			return err
		}
		return core.Inspect(os.Stdout, topo.Snapshot(), state.Algorithm(algo))
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("algo", "a", string(state.DefaultAlgorithm), "routing algorithm, ls or dv")
}
