package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oratio-ai/oratio/internal/bridge"
	"github.com/oratio-ai/oratio/internal/reasoning/credentials"
	"github.com/oratio-ai/oratio/internal/reasoning/dispatch"
	"github.com/oratio-ai/oratio/internal/reasoning/endpoint"
	"github.com/oratio-ai/oratio/internal/reasoning/models"
	"github.com/oratio-ai/oratio/internal/settings"
)

var (
	debug      bool
	configPath string
	bridgeURL  string
)

const defaultBridgeURL = "http://127.0.0.1:11435"

var rootCmd = &cobra.Command{
	Use:   "oratio",
	Short: "Oratio - dictation cleanup through local and cloud models",
	Long: `Oratio routes dictated text to a language model for cleanup.
It resolves the provider from the model id, manages credentials and
endpoints, and returns the cleaned text.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file path")
	rootCmd.PersistentFlags().StringVar(&bridgeURL, "bridge-url", "", "Model manager daemon address")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSettings() (settings.Store, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = settings.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return settings.NewFileStore(path)
}

// buildDispatcher assembles the pipeline. The returned cleanup releases the
// credential cache janitor.
func buildDispatcher(st settings.Store) (*dispatch.Dispatcher, func()) {
	url := bridgeURL
	if url == "" {
		url = os.Getenv("ORATIO_BRIDGE_URL")
	}
	if url == "" {
		url = defaultBridgeURL
	}

	br := bridge.NewClient(url)
	registry := models.NewRegistry(models.WithLocalFallback(true))
	creds := credentials.NewResolver(br, st)
	endpoints := endpoint.NewResolver(st)

	d := dispatch.New(registry, creds, endpoints, br, st)
	return d, creds.Stop
}
