package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/salbp"
	"github.com/meikuraledutech/salbp/config"
	"github.com/meikuraledutech/salbp/filestore"
	"github.com/meikuraledutech/salbp/postgres"
)

var (
	flagStore       string
	flagDataDir     string
	flagDatabaseURL string
	flagJSON        bool
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	defaults, err := config.Load()
	if err != nil {
		defaults = config.Default()
	}

	root := &cobra.Command{
		Use:   "salbp",
		Short: "Inspect SALBP-1 instances and check station assignments",
		Long: `salbp reads assembly line balancing instances from the catalog, replays a
player's station file through the feasibility rules and compares the result
with the reference solution.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagStore, "store", defaults.Store, "Catalog backend: file or postgres")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", defaults.DataDir, "Catalog directory for the file store")
	root.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", defaults.DatabaseURL, "PostgreSQL URL for the postgres store")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	root.AddCommand(listCmd())
	root.AddCommand(showCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(importCmd())
	return root
}

// openStore builds the catalog selected by the global flags.
func openStore(ctx context.Context) (salbp.Store, func(), error) {
	cfg := config.Default()
	cfg.Store = strings.ToLower(flagStore)
	cfg.DataDir = flagDataDir
	cfg.DatabaseURL = flagDatabaseURL
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.Store == config.StorePostgres {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		store := postgres.New(pool)
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("schema: %w", err)
		}
		return store, pool.Close, nil
	}
	return filestore.New(cfg.DataDir), func() {}, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			names, err := store.ListInstances(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return outputJSON(out, names)
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <instance>",
		Short: "Print an instance's tasks and precedence relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			text, err := store.GetInstance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			inst := salbp.ParseInstance(text)
			if flagJSON {
				return outputJSON(cmd.OutOrStdout(), inst)
			}
			printInstance(cmd.OutOrStdout(), args[0], inst)
			return nil
		},
	}
}

func printInstance(w io.Writer, name string, inst *salbp.Instance) {
	fmt.Fprintf(w, "%s  cycle time %s, %d tasks, %d relations\n",
		bold(name), bold(inst.CycleTime), len(inst.Tasks), len(inst.Edges))
	if inst.NumberOfTasks != 0 && inst.NumberOfTasks != len(inst.Tasks) {
		fmt.Fprintf(w, "%s header declares %d tasks\n", yellow("!"), inst.NumberOfTasks)
	}
	for _, t := range inst.Tasks {
		preds := inst.Predecessors(t.ID)
		after := ""
		if len(preds) > 0 {
			after = dim(" after " + strings.Join(preds, ", "))
		}
		fmt.Fprintf(w, "  %-6s %5d%s\n", t.ID, t.Duration, after)
	}
	for _, e := range inst.Dangling() {
		fmt.Fprintf(w, "%s relation %s,%s names an unknown task\n", yellow("!"), e.From, e.To)
	}
}

// checkReport is the JSON form of a check run.
type checkReport struct {
	Instance      string              `json:"instance"`
	Stations      []salbp.StationView `json:"stations"`
	FullyAssigned bool                `json:"fully_assigned"`
	Violation     *salbp.Violation    `json:"violation,omitempty"`
	Error         string              `json:"error,omitempty"`
	Verdict       *salbp.Verdict      `json:"verdict,omitempty"`
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <instance> <player.sol>",
		Short: "Replay a station file and compare it with the reference solution",
		Long: `check places the tasks of a station file one by one, in file order, the
way a player would. It stops at the first refused placement. When every task
is placed the station count is compared with the reference solution.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, done, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			text, err := store.GetInstance(ctx, args[0])
			if err != nil {
				return err
			}
			player, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read player solution: %w", err)
			}

			inst := salbp.ParseInstance(text)
			a, replayErr := salbp.Replay(inst, salbp.ParseSolution(string(player)))
			report := checkReport{
				Instance:      args[0],
				Stations:      salbp.StationViews(inst, a.Stations()),
				FullyAssigned: a.IsFullyAssigned(),
			}

			var v *salbp.Violation
			switch {
			case errors.As(replayErr, &v):
				report.Violation = v
				report.Error = replayErr.Error()
			case replayErr != nil:
				report.Error = replayErr.Error()
			case report.FullyAssigned:
				ref, err := store.GetSolution(ctx, args[0])
				if err != nil {
					return err
				}
				verdict := salbp.Compare(a.Stations(), salbp.ParseSolution(ref))
				report.Verdict = &verdict
			}

			if flagJSON {
				if err := outputJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), inst, report)
			}
			if report.Error != "" || !report.FullyAssigned {
				return errors.New("check failed")
			}
			return nil
		},
	}
}

func printReport(w io.Writer, inst *salbp.Instance, r checkReport) {
	for _, s := range r.Stations {
		load := fmt.Sprintf("%d/%d", s.Load, inst.CycleTime)
		fmt.Fprintf(w, "  station %-3d %9s  %s\n", s.ID, dim(load), strings.Join(s.Tasks, " "))
	}
	switch {
	case r.Error != "":
		fmt.Fprintf(w, "%s %s\n", red("✗"), r.Error)
	case !r.FullyAssigned:
		fmt.Fprintf(w, "%s not every task is assigned\n", yellow("⊘"))
	case r.Verdict.Matches():
		fmt.Fprintf(w, "%s %d stations, same as the reference\n", green("✓"), r.Verdict.PlayerStations)
	default:
		fmt.Fprintf(w, "%s %d stations, the reference uses %d\n",
			red("✗"), r.Verdict.PlayerStations, r.Verdict.ReferenceStations)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <instance> <file.alb> [file.sol]",
		Short: "Add or replace an instance, and optionally its reference solution",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, done, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer done()

			alb, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read instance: %w", err)
			}
			inst := salbp.ParseInstance(string(alb))
			if len(inst.Tasks) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s has no tasks\n", yellow("!"), args[1])
			}
			if err := store.PutInstance(ctx, args[0], string(alb)); err != nil {
				return err
			}

			if len(args) == 3 {
				sol, err := os.ReadFile(args[2])
				if err != nil {
					return fmt.Errorf("read solution: %w", err)
				}
				if err := store.PutSolution(ctx, args[0], string(sol)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %s (%d tasks, cycle time %d)\n",
				green("✓"), bold(args[0]), len(inst.Tasks), inst.CycleTime)
			return nil
		},
	}
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
