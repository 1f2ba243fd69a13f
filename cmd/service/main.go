package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/logging"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("env-file", ".env.local", "optional dotenv file, loaded before reading the environment")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	if err := godotenv.Load(*envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("load %s: %s", *envFile, err)
		}
		log.Debugf("no %s file, using process environment only", *envFile)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// missing auth settings stop us here, before anything goes to the network
	envSettings, err := config.LoadEnv(ctx)
	if err != nil {
		log.Fatalf("environment: %s (run cmd/setup and fill in .env.local)", err)
	}

	logFileName := ""
	if cfg.LogsPath != "" {
		logFileName = "fittrack.log"
	}
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      logFileName,
		LogsPath:         cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        envSettings.SentryDSN,
		SentryServerName: "fittrack-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using storage backend: [%s]", cfg.StorageBackend)

	if !envSettings.AdminEnabled() {
		log.Warnln("admin username and password not set, admin routes disabled. use FITTRACK_ADMIN_USERNAME and FITTRACK_ADMIN_PASSWORD_HASH")
	}

	versionInfo, err := tryGetLastCommitHash()
	if err != nil {
		log.Tracef("failed to get last commit hash / version info: %s", err)
	} else {
		log.Tracef("running version: %s", versionInfo)
	}

	if envSettings.HoneycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:      cfg,
			Env:         envSettings,
			VersionInfo: versionInfo,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}

// tryGetLastCommitHash reads the short hash of HEAD; the binary is
// expected to run from inside the checkout.
func tryGetLastCommitHash() (string, error) {
	stdout, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(stdout)), nil
}
