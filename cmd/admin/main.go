package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"flatgripe/backend/internal/complaint"
	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/logger"
	"flatgripe/backend/internal/models"
	"flatgripe/backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

// env holds what every admin command needs. No HTTP or token settings.
type env struct {
	store      *storage.Service
	complaints *complaint.Service
	log        zerolog.Logger
	close      func()
}

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "admin",
		Usage: "FlatGripe operator tools",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "zerolog level"},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			archiveCommand(),
			leaderboardCommand(),
			statsCommand(),
			resolveCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context, c *cli.Command) (*env, error) {
	log := logger.NewConsole(c.String("log-level"))

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Якщо сервер працює з Redis, адмінка бере ті самі блокування
	var rdb *redis.Client
	var locker storage.FlatLocker = storage.NewLocalLocker()
	if redisCfg := config.LoadRedis(); redisCfg.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisCfg.Addr, Password: redisCfg.Password, DB: redisCfg.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		locker = storage.NewRedisLocker(rdb)
	}

	store := storage.NewStorageService(db, rdb)
	return &env{
		store:      store,
		complaints: complaint.NewService(store, locker, log),
		log:        log,
		close: func() {
			if rdb != nil {
				_ = rdb.Close()
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// withEnv wraps an action so it gets a ready env and closes it afterwards.
func withEnv(fn func(ctx context.Context, c *cli.Command, e *env) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		e, err := setup(ctx, c)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(ctx, c, e)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: withEnv(func(ctx context.Context, c *cli.Command, e *env) error {
			e.log.Info().Msg("schema is up to date")
			return nil
		}),
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create the default flat if it does not exist",
		Action: withEnv(func(ctx context.Context, c *cli.Command, e *env) error {
			flat, err := e.store.EnsureDefaultFlat(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Flat %s (%s) has id %d.\n", flat.Code, flat.Name, flat.ID)
			return nil
		}),
	}
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Archive net-downvoted complaints past the retention window",
		Action: withEnv(func(ctx context.Context, c *cli.Command, e *env) error {
			n, err := e.complaints.ArchiveStale(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d complaint(s) archived.\n", n)
			return nil
		}),
	}
}

func leaderboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "Show a flat's users by karma",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "flat", Required: true, Usage: "flat code"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Command, e *env) error {
			flat, err := findFlat(ctx, e, c.String("flat"))
			if err != nil {
				return err
			}
			users, err := e.complaints.GetLeaderboard(ctx, flat.ID)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(users)
			}
			printLeaderboard(users)
			return nil
		}),
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show a flat's complaint statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "flat", Required: true, Usage: "flat code"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Command, e *env) error {
			flat, err := findFlat(ctx, e, c.String("flat"))
			if err != nil {
				return err
			}
			stats, err := e.complaints.GetStats(ctx, flat.ID)
			if err != nil {
				return err
			}
			return printJSON(stats)
		}),
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a complaint on behalf of a user",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "complaint", Required: true, Usage: "complaint id"},
			&cli.UintFlag{Name: "user", Required: true, Usage: "resolver user id"},
		},
		Action: withEnv(func(ctx context.Context, c *cli.Command, e *env) error {
			resolved, err := e.complaints.Resolve(ctx, uint(c.Uint("complaint")), uint(c.Uint("user")))
			if err != nil {
				return err
			}
			fmt.Printf("Complaint %d has been resolved.\n", resolved.ID)
			return nil
		}),
	}
}

func findFlat(ctx context.Context, e *env, code string) (*models.Flat, error) {
	flat, err := e.store.GetFlatByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return nil, fmt.Errorf("flat %q not found", code)
	}
	return flat, nil
}

func printLeaderboard(users []models.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tID\tUSERNAME\tKARMA")
	for i, u := range users {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", i+1, u.ID, u.Username, u.Karma)
	}
	_ = w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
