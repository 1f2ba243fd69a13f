package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/2beens/fittrack/internal"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/setup"
	"github.com/2beens/fittrack/internal/tracker"
	"github.com/2beens/fittrack/pkg"
)

const exitDuplicatesFound = 2

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create .env.local from .env.example in the current directory",
		Action: func(ctx context.Context, c *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if code := setup.Run(dir, os.Stdout); code != setup.ExitOK {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

// hashPasswordCommand prints a bcrypt hash usable as FITTRACK_ADMIN_PASSWORD_HASH.
func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print the bcrypt hash of the given admin password",
		ArgsUsage: "<password>",
		Action: func(ctx context.Context, c *cli.Command) error {
			password := c.Args().First()
			if password == "" {
				return cli.Exit("password argument missing", 1)
			}
			hash, err := pkg.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load sample data into an empty store",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStore(ctx, c, func(store *tracker.Store) error {
				res, err := tracker.Bootstrap(ctx, store, tracker.NewSeeder(store, time.Now))
				if err != nil {
					return err
				}
				if c.Bool("json") {
					return printJSON(res)
				}
				if !res.Seeded {
					fmt.Printf("nothing seeded: %s\n", res.Reason)
					return nil
				}
				fmt.Printf("seeded %d workouts, %d diet entries, %d progress entries\n",
					res.Workouts, res.DietEntries, res.ProgressEntries)
				return nil
			})
		},
	}
}

func resetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Wipe all tracker data and the stored user id, then bootstrap again",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStore(ctx, c, func(store *tracker.Store) error {
				seeder := tracker.NewSeeder(store, time.Now)
				resetter := tracker.NewResetter(store, func(ctx context.Context) error {
					_, err := tracker.Bootstrap(ctx, store, seeder)
					return err
				})
				if err := resetter.Reset(ctx); err != nil {
					return err
				}
				return printSummary(c, store.Summary())
			})
		},
	}
}

func duplicatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "duplicates",
		Usage: "Report records sharing an id; exits with 2 when any are found",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStore(ctx, c, func(store *tracker.Store) error {
				report := tracker.CheckDuplicates(store.State())
				if c.Bool("json") {
					if err := printJSON(report); err != nil {
						return err
					}
				} else if report.HasDuplicates {
					fmt.Printf("duplicate workout ids: %v\n", report.Workouts)
					fmt.Printf("duplicate diet entry ids: %v\n", report.DietEntries)
					fmt.Printf("duplicate progress entry ids: %v\n", report.ProgressEntries)
				} else {
					fmt.Println("no duplicate ids")
				}
				if report.HasDuplicates {
					return cli.Exit("duplicates found", exitDuplicatesFound)
				}
				return nil
			})
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Print collection counts and the seeded flag",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStore(ctx, c, func(store *tracker.Store) error {
				return printSummary(c, store.Summary())
			})
		},
	}
}

// withStore opens the configured backend and hands over a hydrated store.
func withStore(ctx context.Context, c *cli.Command, run func(*tracker.Store) error) error {
	cfg, err := config.Load(c.String("env"), c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	backend, err := internal.OpenBackend(ctx, internal.OpenBackendParams{
		Config:        cfg,
		RedisPassword: c.String("redis-pass"),
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	store := tracker.NewStore(backend.KV)
	if err := store.Reload(ctx); err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	return run(store)
}

func printSummary(c *cli.Command, summary tracker.Summary) error {
	if c.Bool("json") {
		return printJSON(summary)
	}
	fmt.Printf("workouts:         %d\n", summary.Workouts)
	fmt.Printf("diet entries:     %d\n", summary.DietEntries)
	fmt.Printf("progress entries: %d\n", summary.ProgressEntries)
	fmt.Printf("seeded:           %t\n", summary.Seeded)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
