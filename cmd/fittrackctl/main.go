// Package main is the ops CLI working directly on the configured storage:
// project setup, seeding, reset and data checks.
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/2beens/fittrack/internal/logging"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "fittrackctl",
		Usage: "fittrack operations CLI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Value: "development", Usage: "config environment [development | production]"},
			&cli.StringFlag{Name: "config", Value: "./config.toml", Usage: "path for the TOML config file"},
			&cli.StringFlag{Name: "redis-pass", Usage: "redis password", Sources: cli.EnvVars("FITTRACK_REDIS_PASS")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log level"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.Setup(logging.LoggerSetupParams{
				LogLevel:    cmd.String("log-level"),
				LogToStdout: true,
			})
			return ctx, nil
		},
		Commands: []*cli.Command{
			setupCommand(),
			seedCommand(),
			resetCommand(),
			duplicatesCommand(),
			summaryCommand(),
			hashPasswordCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}
