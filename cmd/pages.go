package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gmg-digital/staticembed/internal/pages"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Manage the registry of source pages",
}

var pagesAddCmd = &cobra.Command{
	Use:   "add <page-id>",
	Short: "Register or update a source page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid page id %q", args[0])
		}
		url, _ := cmd.Flags().GetString("url")
		title, _ := cmd.Flags().GetString("title")
		status, _ := cmd.Flags().GetString("status")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, _, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		p := pages.Page{ID: id, Title: title, URL: url, Status: pages.Status(status)}
		if err := pages.NewStore(database).Upsert(context.Background(), p); err != nil {
			return err
		}
		fmt.Printf("Page %d saved (%s)\n", id, status)
		return nil
	},
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, _, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		list, err := pages.NewStore(database).List(context.Background())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tURL")
		for _, p := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Status, p.Title, p.URL)
		}
		return w.Flush()
	},
}

func init() {
	pagesAddCmd.Flags().String("url", "", "page permalink to scrape")
	pagesAddCmd.Flags().String("title", "", "page title")
	pagesAddCmd.Flags().String("status", string(pages.StatusPublish), "publish, draft or private")
	pagesAddCmd.MarkFlagRequired("url")

	pagesCmd.AddCommand(pagesAddCmd, pagesListCmd)
	rootCmd.AddCommand(pagesCmd)
}
