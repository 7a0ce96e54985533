// Command ingest is the Bolão import CLI. Every subcommand runs the same code
// path as the matching action of POST /api/admin/sofascore.
//
// Usage:
//
//	bolao-ingest tournaments search --query brasileirao
//	bolao-ingest tournaments setup --tournament 325 --season 72034
//	bolao-ingest matches import --season 72034
//	bolao-ingest matches import-round --local-season 3 --round 12
//	bolao-ingest scores calculate --local-season 3
//	bolao-ingest teams import --season 72034 --players --logos
//	bolao-ingest fixtures process
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/bolao/internal/cache"
	"github.com/albapepper/bolao/internal/config"
	"github.com/albapepper/bolao/internal/db"
	"github.com/albapepper/bolao/internal/fixture"
	"github.com/albapepper/bolao/internal/maintenance"
	"github.com/albapepper/bolao/internal/provider/sofascore"
	"github.com/albapepper/bolao/internal/seed"
	"github.com/albapepper/bolao/internal/storage"
	"github.com/albapepper/bolao/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "bolao-ingest",
		Short:        "Bolão SofaScore import CLI",
		SilenceUsage: true,
	}

	root.AddCommand(tournamentsCmd())
	root.AddCommand(matchesCmd())
	root.AddCommand(scoresCmd())
	root.AddCommand(teamsCmd())
	root.AddCommand(fixturesCmd())
	root.AddCommand(prizeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// tournaments command
// --------------------------------------------------------------------------

func tournamentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "Search and set up SofaScore tournaments",
	}

	var query string
	search := &cobra.Command{
		Use:   "search",
		Short: "Search tournaments by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.SearchTournament(ctx, query)
			})
		},
	}
	search.Flags().StringVar(&query, "query", "", "Tournament name")
	_ = search.MarkFlagRequired("query")

	var tournamentID, seasonID int
	setup := &cobra.Command{
		Use:   "setup",
		Short: "Import a tournament with its seasons and detect its format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.SetupTournament(ctx, tournamentID, seasonID)
			})
		},
	}
	setup.Flags().IntVar(&tournamentID, "tournament", 0, "SofaScore tournament ID")
	setup.Flags().IntVar(&seasonID, "season", 0, "SofaScore season ID (default: newest)")
	_ = setup.MarkFlagRequired("tournament")

	seasons := &cobra.Command{
		Use:   "seasons",
		Short: "List the seasons of a tournament",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.GetSeasons(ctx, tournamentID)
			})
		},
	}
	seasons.Flags().IntVar(&tournamentID, "tournament", 0, "SofaScore tournament ID")
	_ = seasons.MarkFlagRequired("tournament")

	rounds := &cobra.Command{
		Use:   "rounds",
		Short: "List the rounds of a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.GetRounds(ctx, tournamentID, seasonID)
			})
		},
	}
	rounds.Flags().IntVar(&tournamentID, "tournament", 0, "SofaScore tournament ID")
	rounds.Flags().IntVar(&seasonID, "season", 0, "SofaScore season ID")
	_ = rounds.MarkFlagRequired("tournament")
	_ = rounds.MarkFlagRequired("season")

	cmd.AddCommand(search, setup, seasons, rounds)
	return cmd
}

// --------------------------------------------------------------------------
// matches command
// --------------------------------------------------------------------------

func matchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Import matches and refresh their scores",
	}

	var ref seasonFlags
	importAll := &cobra.Command{
		Use:   "import",
		Short: "Import every match of a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.ImportMatches(ctx, ref.ref())
			})
		},
	}
	ref.bind(importAll)

	var round int
	var slug string
	importRound := &cobra.Command{
		Use:   "import-round",
		Short: "Import the matches of one round",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.ImportRoundMatches(ctx, ref.ref(), round, slug)
			})
		},
	}
	ref.bind(importRound)
	importRound.Flags().IntVar(&round, "round", 0, "Round number")
	importRound.Flags().StringVar(&slug, "slug", "", "Round slug (knockout rounds)")
	_ = importRound.MarkFlagRequired("round")

	update := &cobra.Command{
		Use:   "update-scores",
		Short: "Refresh status and score of stored matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.UpdateMatchScores(ctx, ref.ref())
			})
		},
	}
	ref.bind(update)

	cmd.AddCommand(importAll, importRound, update)
	return cmd
}

// --------------------------------------------------------------------------
// scores command
// --------------------------------------------------------------------------

func scoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Score predictions",
	}

	var ref seasonFlags
	calculate := &cobra.Command{
		Use:   "calculate",
		Short: "Score predictions of newly finished matches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.CalculateScores(ctx, ref.ref())
			})
		},
	}
	ref.bind(calculate)

	sync := &cobra.Command{
		Use:   "sync",
		Short: "Recompute every prediction of a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.SyncPredictionsSeason(ctx, ref.ref())
			})
		},
	}
	ref.bind(sync)

	cmd.AddCommand(calculate, sync)
	return cmd
}

// --------------------------------------------------------------------------
// teams command
// --------------------------------------------------------------------------

func teamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Import teams and standings",
	}

	var ref seasonFlags
	var opts seed.TeamImportOptions
	importTeams := &cobra.Command{
		Use:   "import",
		Short: "Import the teams of a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.ImportTeams(ctx, ref.ref(), opts)
			})
		},
	}
	ref.bind(importTeams)
	importTeams.Flags().BoolVar(&opts.IncludePlayers, "players", false, "Also import squads")
	importTeams.Flags().BoolVar(&opts.UploadLogos, "logos", false, "Mirror team logos to R2")

	standings := &cobra.Command{
		Use:   "standings",
		Short: "Show the season table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				return env.runner.GetStandings(ctx, ref.ref())
			})
		},
	}
	ref.bind(standings)

	cmd.AddCommand(importTeams, standings)
	return cmd
}

// --------------------------------------------------------------------------
// fixtures / prize commands
// --------------------------------------------------------------------------

func fixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Overdue match processing",
	}

	var workers int
	var delay time.Duration
	process := &cobra.Command{
		Use:   "process",
		Short: "Refresh and score every season with overdue results (one auto sync run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				if !cmd.Flags().Changed("delay") {
					delay = env.cfg.AutoSyncDelay
				}
				if !cmd.Flags().Changed("workers") {
					workers = env.cfg.AutoSyncWorkers
				}
				s := fixture.NewScheduler(env.store, env.runner, delay, workers, logger)
				result := s.ProcessPending(ctx)
				if len(result.Errors) > 0 && result.SeasonsSucceeded == 0 && result.SeasonsFound > 0 {
					return result, fmt.Errorf("%d seasons failed", result.SeasonsFailed)
				}
				return result, nil
			})
		},
	}
	process.Flags().IntVar(&workers, "workers", 2, "Concurrent seasons")
	process.Flags().DurationVar(&delay, "delay", 2*time.Hour, "Time after kickoff before a result is expected")

	cmd.AddCommand(process)
	return cmd
}

func prizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prize",
		Short: "Prize pool maintenance",
	}
	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute the prize pool of every current season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, env *env) (any, error) {
				n, err := maintenance.ReconcilePrizePools(ctx, env.store, env.runner, logger)
				return map[string]int{"seasons": n}, err
			})
		},
	}
	cmd.AddCommand(reconcile)
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// seasonFlags selects a season by local id or SofaScore id.
type seasonFlags struct {
	local     int64
	sofascore int
}

func (f *seasonFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.local, "local-season", 0, "Local season ID")
	cmd.Flags().IntVar(&f.sofascore, "season", 0, "SofaScore season ID")
	cmd.MarkFlagsOneRequired("local-season", "season")
}

func (f *seasonFlags) ref() seed.SeasonRef {
	return seed.SeasonRef{LocalID: f.local, SofascoreID: f.sofascore}
}

type env struct {
	cfg    *config.Config
	store  store.Store
	runner *seed.Runner
}

// run connects everything a command needs, runs fn and prints its result as
// JSON on stdout.
func run(fn func(ctx context.Context, env *env) (any, error)) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.RapidAPIKey == "" {
		return fmt.Errorf("RAPIDAPI_KEY is required")
	}
	client := sofascore.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost, cfg.SofascoreRPM, logger)
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without response cache", "error", err)
		} else {
			defer rc.Close()
			client.WithCache(rc, cfg.SofascoreCacheTTL)
		}
	}

	st := store.New(pool, clock.New())
	runner := seed.NewRunner(st, sofascore.NewFootballHandler(client, logger), logger).
		WithBatchSize(cfg.ImportBatchSize)
	if cfg.R2Enabled() {
		r2, err := storage.NewR2(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2Bucket,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("configure R2: %w", err)
		}
		runner.WithLogoStore(r2)
	}

	start := time.Now()
	result, err := fn(ctx, &env{cfg: cfg, store: st, runner: runner})
	logger.Info("Command finished", "duration", time.Since(start).Round(time.Millisecond), "ok", err == nil)

	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return fmt.Errorf("encode result: %w", encErr)
		}
	}
	return err
}
