// Package cmd provides the polyglot command line: serve runs the HTTP service
// and check validates a language manifest and reports translation coverage.
package cmd

import (
	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "polyglot",
	Short: "Language manifest resolver and translation service",
	Long: `polyglot loads a language manifest and its message bundles, serves them over
HTTP and reports how complete each translation is.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to polyglot.yml (default: search the usual locations)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the config file and applies the configured log level.
func loadConfig() (config.FileConfig, error) {
	path := configPath
	if path == "" {
		path = config.FindConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cfg.LogLevel != "" {
		utils.SetLogLevel(cfg.LogLevel)
	}
	if path != "" {
		utils.Logger.Debug("configuration loaded", "path", path)
	}
	return cfg, nil
}
