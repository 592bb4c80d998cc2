// Root command for the lens CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rowdelta/internal/paths"
	"github.com/mesh-intelligence/rowdelta/pkg/rowdelta"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagVerbose   bool
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands
// can use them.
var (
	configDataDir       string
	configCacheTTL      string
	configDeleteDisplay string
)

var rootCmd = &cobra.Command{
	Use:     "lens",
	Short:   "Lens inspects result sets and pending row edits",
	Version: rowdelta.Version,
	Long: `Lens is a companion tool for the rowdelta result-consistency library.
It compares tabular result-set files, manages per-session logs of pending
row mutations, and renders the projected preview a result grid would show.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		configDataDir = cfg.GetString(cfgKeyDataDir)
		configCacheTTL = cfg.GetString(cfgKeyCacheTTL)
		configDeleteDisplay = cfg.GetString(cfgKeyDeleteDisplay)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.lens-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(changesCmd)
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > LENS_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > LENS_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
