package cmd

import (
	"context"
	"fmt"
	"time"

	"offrows/core/config"
	"offrows/core/logger"
	"offrows/feature/tables/syncdriver"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// syncCmd is the parent command for client-side sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the local database with the server",
	Long: `Sync operations for the client-side local database.
push sends dirty local records to the server; pull replaces the clean part
of the local database with the server's current state.`,
}

// pushCmd sends every dirty local record to the server in one batch.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push dirty local records to the server",
	Long: `Push collects every locally edited table, row and view into one batch,
submits it to the server, and folds the canonical response back into the
local database. Rejected changes are marked as conflicts and refreshed
from the server.`,
	RunE: runPush,
}

// pullCmd replaces the clean local state with a server snapshot.
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the server state into the local database",
	Long: `Pull fetches every table with its rows and views from the server and
upserts them into the local database. Locally edited (dirty) records are
left untouched for the next push.`,
	RunE: runPull,
}

func init() {
	syncCmd.AddCommand(pushCmd)
	syncCmd.AddCommand(pullCmd)
	RootCmd.AddCommand(syncCmd)
}

func newDriver() (*syncdriver.Driver, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, err := syncdriver.NewStore(cfg.Client.Database)
	if err != nil {
		return nil, err
	}

	api := syncdriver.NewAPI(cfg.Client)
	return syncdriver.NewDriver(cfg.Client, store, api, l), nil
}

func runPush(cmd *cobra.Command, args []string) error {
	driver, err := newDriver()
	if err != nil {
		return err
	}

	report, err := driver.Push(context.Background())
	if err != nil {
		return err
	}

	printSyncReport("Push", report)
	return nil
}

func runPull(cmd *cobra.Command, args []string) error {
	driver, err := newDriver()
	if err != nil {
		return err
	}

	report, err := driver.Pull(context.Background())
	if err != nil {
		return err
	}

	printSyncReport("Pull", report)
	return nil
}

// printSyncReport renders a colored summary of one sync round.
func printSyncReport(op string, report *syncdriver.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Printf("\n%s complete (%s)\n", op, report.Duration.Round(time.Millisecond))
	green.Printf("  tables: %d  rows: %d  views: %d\n", report.Tables, report.Rows, report.Views)

	if len(report.Conflicts) == 0 {
		return
	}
	yellow.Printf("  conflicts: %d\n", len(report.Conflicts))
	for _, c := range report.Conflicts {
		yellow.Printf("    [%s] %s: %s\n", c.Type, c.ID, c.Message)
	}
}
