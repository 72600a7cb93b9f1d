package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gmg-digital/staticembed/internal/hydrate"
	"github.com/gmg-digital/staticembed/internal/reports"
)

var hydrateCmd = &cobra.Command{
	Use:   "hydrate <host-page.html|->",
	Short: "Hydrate a host page with static content fragments",
	Long:  `Reads a host page, loads the static content for every [data-elementor-id] container through the content API and writes the hydrated page.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHydrate,
}

func init() {
	hydrateCmd.Flags().String("page-name", "", "platform page name sent with the page-load event")
	hydrateCmd.Flags().String("page-url", "", "page URL recorded in error reports")
	hydrateCmd.Flags().String("user-agent", "", "requesting browser user agent")
	hydrateCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(hydrateCmd)
}

func runHydrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening host page: %w", err)
		}
		defer f.Close()
		in = f
	}
	page, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading host page: %w", err)
	}

	database, _, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	dispatcher := reports.NewDispatcher(reports.NewStore(database), cfg.Webhook.URL, cfg.Webhook.Timeout, logger)

	pageName, _ := cmd.Flags().GetString("page-name")
	pageURL, _ := cmd.Flags().GetString("page-url")
	userAgent, _ := cmd.Flags().GetString("user-agent")

	res, err := hydrate.New(cfg, dispatcher, nil, logger).Hydrate(context.Background(), hydrate.Request{
		HTML:      string(page),
		PageName:  pageName,
		PageURL:   pageURL,
		UserAgent: userAgent,
	})
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		_, err = io.WriteString(os.Stdout, res.HTML)
		return err
	}
	if err := os.WriteFile(out, []byte(res.HTML), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Hydrated page written to %s (%s mode)\n", out, res.Mode)
	return nil
}
