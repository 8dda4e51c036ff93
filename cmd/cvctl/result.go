package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result <id>",
	Short: "Print a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newClient().GetResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(result)
		}
		printReport(os.Stdout, result)
		return nil
	},
}
