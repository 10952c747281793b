package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/routesim/core"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compares two reports, ignoring blank lines",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer a.Close()
		b, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer b.Close()

		mismatch, err := core.CompareOutputs(a, b)
		if err != nil {
			return err
		}
		if mismatch != nil {
			fmt.Println(mismatch.String())
			return fmt.Errorf("these files DO NOT match")
		}
		fmt.Println("These files DO match.")
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
