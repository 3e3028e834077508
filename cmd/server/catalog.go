package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/ashureev/apsfd-portal/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	auditLimit int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the training catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List training modules, seeding the defaults into an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := store.NewSQLite(resolveDBPath())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		if _, err := repo.SeedModules(cmd.Context(), domain.DefaultCatalog()); err != nil {
			return err
		}
		modules, err := repo.ListModules(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPROGRESS\tSTATUS\tCONTENT")
		for _, m := range modules {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d%%\t%s\t%s\n", m.ID, m.Title, m.Category, m.Progress, m.Status, m.ContentKind)
		}
		return tw.Flush()
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent login attempts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, err := store.NewSQLite(resolveDBPath())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		events, err := repo.RecentAuthEvents(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tEMAIL\tOUTCOME\tREMOTE IP")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format(time.RFC3339), e.Email, e.Outcome, e.RemoteIP)
		}
		return tw.Flush()
	},
}

func closeRepo(repo store.Repository) {
	if err := repo.Close(); err != nil {
		slog.Error("Failed to close repository", "error", err)
	}
}

func resolveDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		return v
	}
	return "./data/portal.db"
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $DB_PATH or ./data/portal.db)")
	auditCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default $DB_PATH or ./data/portal.db)")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "number of events to show")
	catalogCmd.AddCommand(catalogListCmd)
}
