package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rawdb/internal/app"
	"rawdb/internal/config"
	"rawdb/internal/model"
	"rawdb/internal/recon"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Scan", "Archive").
func newApp(cmd *cobra.Command, operation, parameters string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// parseSide maps the --side flag to an inventory side.
func parseSide(s string) (model.Side, error) {
	switch s {
	case "disk":
		return model.Disk, nil
	case "camera":
		return model.Camera, nil
	default:
		return 0, fmt.Errorf("invalid side %q (want disk or camera)", s)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rawdb",
	Short: "Camera file inventory and archiving tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [SOURCE_DIR]",
	Short: "Initialize configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Explicit argument wins over the RAWDB_SOURCE_DIR default.
		sourceDir := defaults["source_dir"]
		if len(args) > 0 {
			sourceDir = args[0]
		}

		cfg := config.NewConfig(defaults["base_dir"], sourceDir)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		if sourceDir != "" {
			fmt.Printf("Source Dir: %s\n", sourceDir)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Source Dir: %s\n", cfg.SourceDir)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Archive:    %s\n", cfg.Archive.Type)
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan [ROOT]",
	Short: "Refresh an inventory from the filesystem",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sideFlag, _ := cmd.Flags().GetString("side")
		side, err := parseSide(sideFlag)
		if err != nil {
			return err
		}

		root := ""
		if len(args) > 0 {
			root = args[0]
		}

		a, err := newApp(cmd, "Scan", "side="+sideFlag)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Scan(cmd.Context(), side, root)
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Printf("Added %d new record(s) to the %s inventory\n", count, side)
		return nil
	},
}

// reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match camera records against the disk inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Reconcile", "")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Reconcile(cmd.Context())
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("reconcile failed: %w", err)
		}

		printReconcileResult(res)
		return nil
	},
}

func printReconcileResult(res *recon.Result) {
	fmt.Printf("Matched: %d  Duplicates: %d  Unmatched: %d\n",
		res.Matched, res.Duplicates, res.Unmatched)

	if len(res.Regressed) > 0 {
		fmt.Printf("\n%d previously saved file(s) lost their archived copy:\n", len(res.Regressed))
		for i := range res.Regressed {
			fmt.Printf("  %s\n", res.Regressed[i].Path)
		}
	}

	if len(res.Conflicts) > 0 {
		fmt.Printf("\n%d ambiguous match(es):\n", len(res.Conflicts))
		for i := range res.Conflicts {
			c := &res.Conflicts[i]
			fmt.Printf("  %s matches %d disk records:\n", c.Record.Path, len(c.Candidates))
			for _, cand := range c.Candidates {
				fmt.Printf("    %s\n", cand.Path)
			}
		}
	}
}

// plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which files a transfer would archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Plan", "")
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.Plan(cmd.Context())
		if err != nil {
			return fmt.Errorf("planning failed: %w", err)
		}

		printPlan(plan)
		return nil
	},
}

func printPlan(plan []model.FileRecord) {
	if len(plan) == 0 {
		fmt.Println("Nothing to transfer.")
		return
	}

	rows := make([][]string, 0, len(plan))
	var total int64
	for i := range plan {
		rec := &plan[i]
		rows = append(rows, []string{
			dateOrDash(rec.Date.Valid, rec.Date.String),
			rec.Name,
			humanize.Bytes(uint64(rec.Size)),
			rec.Path,
		})
		total += rec.Size
	}

	printTable(
		[]string{"Date", "Name", "Size", "Path"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
	fmt.Printf("%d file(s), %s\n", len(plan), humanize.Bytes(uint64(total)))
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Reconcile and transfer unmatched files into the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if dryRun {
			a, err := newApp(cmd, "Plan", "")
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.Plan(cmd.Context())
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			printPlan(plan)
			return nil
		}

		a, err := newApp(cmd, "Archive", "")
		if err != nil {
			return err
		}
		defer a.Close()

		res, archived, err := a.Archive(cmd.Context())
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("archive failed: %w", err)
		}

		printReconcileResult(res)
		fmt.Printf("Archived %d of %d planned file(s)\n", archived, len(res.Plan))
		return nil
	},
}

// backfill command
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Compute checksums for records that are missing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		sideFlag, _ := cmd.Flags().GetString("side")
		side, err := parseSide(sideFlag)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Backfill", "side="+sideFlag)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Backfill(cmd.Context(), side)
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("backfill failed: %w", err)
		}

		fmt.Printf("Backfilled %d checksum(s) in the %s inventory\n", count, side)
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize both inventories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Status", "")
		if err != nil {
			return err
		}
		defer a.Close()

		statuses, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(statuses))
		for _, st := range statuses {
			saved := "-"
			if st.Side == model.Camera {
				saved = strconv.Itoa(st.Saved)
			}
			rows = append(rows, []string{
				st.Side.String(),
				strconv.Itoa(st.Records),
				humanize.Bytes(uint64(st.Bytes)),
				strconv.Itoa(st.WithChecksum),
				strconv.Itoa(st.WithDate),
				saved,
			})
		}

		printTable(
			[]string{"Inventory", "Records", "Bytes", "Checksummed", "Dated", "Saved"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
		)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History", "")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			id := r.ID
			if len(id) > 8 {
				id = id[:8]
			}
			rows = append(rows, []string{
				id,
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
			})
		}

		printTable(
			[]string{"Run", "Operation", "Started", "Status", "Duration"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
		)
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, app.OpMigrate, "")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.MigrateUp(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Println("Database schema is up to date.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("side", "s", "camera", "Inventory to refresh (disk or camera)")
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.Flags().Bool("dry-run", false, "Show the plan without transferring anything")
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().StringP("side", "s", "camera", "Inventory to backfill (disk or camera)")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(migrateCmd)
}
