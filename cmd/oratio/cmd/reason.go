package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oratio-ai/oratio/internal/reasoning"
	"github.com/oratio-ai/oratio/internal/settings"
)

var (
	reasonModel       string
	reasonAgentName   string
	reasonTemperature float64
	reasonMaxTokens   int
)

var reasonCmd = &cobra.Command{
	Use:   "reason [text]",
	Short: "Clean up dictated text through the configured model",
	Long: `Runs text through the reasoning pipeline. Text comes from the
argument or, when absent, from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSettings()
		if err != nil {
			return err
		}

		text, err := inputText(args)
		if err != nil {
			return err
		}

		if !st.GetBool(settings.KeyEnabled) {
			fmt.Println(text)
			return nil
		}

		modelID := reasonModel
		if modelID == "" {
			modelID = st.GetString(settings.KeyModel)
		}
		if modelID == "" {
			return fmt.Errorf("no model selected; pass --model or set %s", settings.KeyModel)
		}

		cfg := reasoning.GenerationConfig{MaxTokens: reasonMaxTokens}
		if cmd.Flags().Changed("temperature") {
			cfg.Temperature = &reasonTemperature
		}

		dispatcher, cleanup := buildDispatcher(st)
		defer cleanup()

		out, err := dispatcher.ProcessText(cmd.Context(), text, modelID, reasonAgentName, cfg)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func inputText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimRight(string(raw), "\n")
	if text == "" {
		return "", fmt.Errorf("no input text")
	}
	return text, nil
}

func init() {
	reasonCmd.Flags().StringVar(&reasonModel, "model", "", "Model id (overrides the configured model)")
	reasonCmd.Flags().StringVar(&reasonAgentName, "agent-name", "", "Agent name substituted into the prompt")
	reasonCmd.Flags().Float64Var(&reasonTemperature, "temperature", 0.3, "Sampling temperature")
	reasonCmd.Flags().IntVar(&reasonMaxTokens, "max-tokens", 0, "Output token budget (0 = derive from input length)")
	rootCmd.AddCommand(reasonCmd)
}
