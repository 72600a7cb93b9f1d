package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "staticembed",
	Short: "Static content snapshots and server-side hydration for embedded pages",
	Long: `staticembed snapshots published pages into static fragments, serves
them through a content API and hydrates host pages with them: each fragment
is mounted in an isolated shadow root, spreadsheet placeholders are filled
and the page widgets are prepared.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".staticembed.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")
}
