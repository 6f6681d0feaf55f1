package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/smazurov/ledmcp/internal/tools"
	"github.com/spf13/cobra"
)

// CreateToolsCmd creates the tools command, which prints the tool catalogue.
func CreateToolsCmd() *cobra.Command {
	var namesOnly bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the LED tool catalogue as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs := tools.Definitions()
			if namesOnly {
				for _, def := range defs {
					fmt.Fprintln(cmd.OutOrStdout(), def.Name)
				}
				return nil
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(defs)
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "names", false, "Print tool names only, one per line")
	return cmd
}
