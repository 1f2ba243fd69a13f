package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/2beens/fittrack/pkg"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogsPath         string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the package-level logrus logger. It is called once,
// before anything else logs.
func Setup(params LoggerSetupParams) {
	logrus.SetLevel(GetLevel(params.LogLevel))
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out, target := newOutput(params)
	logrus.SetOutput(out)
	logrus.Debugf("writing logs to %s", target)

	if params.SentryEnabled {
		setupSentry(params)
	}
}

func setupSentry(params LoggerSetupParams) {
	if params.SentryDSN == "" {
		logrus.Warnln("sentry enabled but SENTRY_DSN is empty, skipping")
		return
	}

	if err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 0.2,
		ServerName:       params.SentryServerName,
	}); err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry hook installed")
}

func newOutput(params LoggerSetupParams) (io.Writer, string) {
	path := LogFilePath(params.LogsPath, params.LogFileName)
	if path == "" {
		return os.Stdout, "stdout"
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	if params.LogToStdout {
		return pkg.NewCombinedWriter(os.Stdout, file), path + " and stdout"
	}
	return file, path
}

// LogFilePath joins dir and name, making sure the result ends in ".log".
// An empty name means no log file.
func LogFilePath(dir, name string) string {
	if name == "" {
		return ""
	}
	if filepath.Ext(name) != ".log" {
		name += ".log"
	}
	return filepath.Join(dir, name)
}

// GetLevel parses a level name, falling back to info.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
