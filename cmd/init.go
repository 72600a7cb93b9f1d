package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmg-digital/staticembed/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a staticembed config file with an interactive wizard",
	Long:  `Asks for the content API, spreadsheet, webhook and widget URLs and writes them to the config file. An existing file is kept unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfgFile); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote %s\n", cfgFile)
		fmt.Fprintf(out, "  content API: %s\n", cfg.Content.BaseURL)
		if cfg.Webhook.URL != "" {
			fmt.Fprintf(out, "  webhook:     %s\n", cfg.Webhook.URL)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
