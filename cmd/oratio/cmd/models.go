package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oratio-ai/oratio/internal/reasoning/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the known models and their providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := models.NewRegistry()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tNAME\tPROVIDER\tFLAGS")
		for _, def := range registry.List() {
			flags := ""
			if def.DisableThinking {
				flags = "no-thinking"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.ID, def.Name, def.Provider, flags)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
