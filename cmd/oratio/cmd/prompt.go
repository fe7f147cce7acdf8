package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oratio-ai/oratio/internal/prompt"
	"github.com/oratio-ai/oratio/internal/settings"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "View, edit, and test the system prompt",
}

var promptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active system prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSettings()
		if err != nil {
			return err
		}
		studio := prompt.NewStudio(st, nil)
		text, overridden := studio.Current()
		source := "default"
		if overridden {
			source = "override"
		}
		fmt.Printf("# source: %s\n%s\n", source, prompt.Substitute(text, agentNameFor(st)))
		return nil
	},
}

var promptSetCmd = &cobra.Command{
	Use:   "set [text]",
	Short: "Override the system prompt (reads stdin when no argument)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSettings()
		if err != nil {
			return err
		}
		text := ""
		if len(args) == 1 {
			text = args[0]
		} else {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(raw)
		}
		return prompt.NewStudio(st, nil).Set(text)
	},
}

var promptResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in system prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSettings()
		if err != nil {
			return err
		}
		return prompt.NewStudio(st, nil).Reset()
	},
}

var promptTestModel string

var promptTestCmd = &cobra.Command{
	Use:   "test [sample]",
	Short: "Run a sample text through the active prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSettings()
		if err != nil {
			return err
		}
		modelID := promptTestModel
		if modelID == "" {
			modelID = st.GetString(settings.KeyModel)
		}
		if modelID == "" {
			return fmt.Errorf("no model selected; pass --model or set %s", settings.KeyModel)
		}

		dispatcher, cleanup := buildDispatcher(st)
		defer cleanup()

		out, err := prompt.NewStudio(st, dispatcher).Test(cmd.Context(), args[0], modelID)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func agentNameFor(st settings.Store) string {
	if name := st.GetString(settings.KeyAgentName); name != "" {
		return name
	}
	return "Assistant"
}

func init() {
	promptTestCmd.Flags().StringVar(&promptTestModel, "model", "", "Model id to test against")
	promptCmd.AddCommand(promptShowCmd, promptSetCmd, promptResetCmd, promptTestCmd)
	rootCmd.AddCommand(promptCmd)
}
