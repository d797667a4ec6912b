// Package cmd implements the streamdeckfs CLI commands using Cobra.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Build-time version information, set via SetVersionInfo from main.go.
var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
	appBuiltBy = "unknown"
)

// Persistent flag values accessible to all subcommands.
var (
	cfgFile   string
	DeckDir   string
	Verbose   bool
	appViper  = viper.New()
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "streamdeckfs",
	Short: "A filesystem-driven Stream Deck configuration daemon",
	Long: `streamdeckfs turns a directory tree into the live configuration of an
Elgato Stream Deck: page, key, image, text, and event files are watched and
reconciled onto the device as they are added, changed, or removed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd.Root())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a daemon config file (env: STREAMDECKFS_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&DeckDir, "deck", "d", ".", "deck root directory")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "serving", Title: "Serving"},
		&cobra.Group{ID: "scaffolding", Title: "Scaffolding"},
	)
}

// Execute runs the root command. This is the main entry point called from main.go.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets build-time version information from ldflags.
// Call this from main.go before Execute().
func SetVersionInfo(version, commit, date, builtBy string) {
	appVersion = version
	appCommit = commit
	appDate = date
	appBuiltBy = builtBy

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("streamdeckfs %s (commit: %s, built: %s by %s)\n", version, commit, date, builtBy),
	)
}

// initConfig sets up the daemon-wide Viper layer: CLI flags > STREAMDECKFS_*
// env vars > an optional --config file > built-in defaults.
func initConfig(root *cobra.Command) error {
	appViper.SetConfigType("toml")
	appViper.SetEnvPrefix("STREAMDECKFS")
	appViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	appViper.AutomaticEnv()
	if Verbose {
		appViper.Set("log_level", "debug")
	}
	return nil
}
