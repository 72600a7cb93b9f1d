package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gmg-digital/staticembed/internal/audit"
	"github.com/gmg-digital/staticembed/internal/pages"
	"github.com/gmg-digital/staticembed/internal/progress"
	"github.com/gmg-digital/staticembed/internal/staticcontent"
)

var generateCmd = &cobra.Command{
	Use:   "generate [page-id...]",
	Short: "Generate static content for registered pages",
	Long:  `Scrapes published pages from the registry, extracts their stylesheets and scripts, and stores the result as static content served by the content API.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().Bool("all", false, "generate every published page in the registry")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return errors.New("pass page ids or --all")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, _, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	pageStore := pages.NewStore(database)
	svc := staticcontent.NewService(staticcontent.NewStore(database), pageStore, audit.NewStore(database), cfg.Generator, logger)
	defer svc.Close()

	ids, err := pageIDs(ctx, pageStore, args, all)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "No published pages to generate.")
		return nil
	}

	tracker := progress.New(os.Stderr, len(ids))
	var embeds []string
	for _, id := range ids {
		p, err := svc.Generate(ctx, id, false)
		tracker.Record(id, err)
		if err != nil {
			logger.Warn("generation failed", zap.Int64("page_id", id), zap.Error(err))
			continue
		}
		embeds = append(embeds, fmt.Sprintf("  %d  %s", id, p.EmbedCode()))
	}
	sum := tracker.Finish()

	fmt.Fprintf(os.Stderr, "Generated %d of %d pages in %s\n", sum.Succeeded, sum.Total, sum.Elapsed.Round(time.Millisecond))
	for _, e := range embeds {
		fmt.Println(e)
	}
	if n := len(sum.Failures); n > 0 {
		return fmt.Errorf("%d pages failed", n)
	}
	return nil
}

func pageIDs(ctx context.Context, store *pages.Store, args []string, all bool) ([]int64, error) {
	if !all {
		ids := make([]int64, 0, len(args))
		for _, a := range args {
			id, err := strconv.ParseInt(staticcontent.NormalizePageID(a), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid page id %q", a)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	list, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, p := range list {
		if p.Published() {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}
