package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"replycast/pkg/ui/report"
)

var channelsJSON bool

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List channels and the content kinds they support",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime("cmd.channels")
		if err != nil {
			return err
		}

		matrix := rt.factory.Capabilities()
		if channelsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(matrix)
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Matrix(matrix))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(channelsCmd)
	channelsCmd.Flags().BoolVar(&channelsJSON, "json", false, "print the matrix as JSON")
}
