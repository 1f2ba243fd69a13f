package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/internal/storage"
)

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"

	Default = Dark
)

var ErrInvalidTheme = errors.New("invalid theme")

func Parse(value string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case Dark:
		return Dark, nil
	case Light:
		return Light, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, value)
	}
}

// Resolve picks the saved theme, then the system one, then the default.
// Unknown values count as missing.
func Resolve(saved, system string) Theme {
	if t, err := Parse(saved); err == nil {
		return t
	}
	if t, err := Parse(system); err == nil {
		return t
	}
	return Default
}

// Get returns the saved theme; found is false when nothing valid is saved.
func Get(ctx context.Context, kv storage.KV) (Theme, bool, error) {
	saved, found, err := kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		return "", false, fmt.Errorf("read theme: %w", err)
	}
	if !found {
		return "", false, nil
	}
	t, err := Parse(saved)
	if err != nil {
		log.Warnf("ignoring saved theme: %s", err)
		return "", false, nil
	}
	return t, true, nil
}

func Save(ctx context.Context, kv storage.KV, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}
	if err := kv.Set(ctx, storage.KeyTheme, string(t)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Init resolves the theme against the system preference and persists it
// when nothing valid is saved yet.
func Init(ctx context.Context, kv storage.KV, system string) (Theme, error) {
	saved, found, err := Get(ctx, kv)
	if err != nil {
		return "", err
	}
	if found {
		return saved, nil
	}

	t := Resolve("", system)
	if err := Save(ctx, kv, t); err != nil {
		return "", err
	}
	log.Debugf("theme initialised to %s", t)
	return t, nil
}
