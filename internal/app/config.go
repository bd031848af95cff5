package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// Config holds the command-line inputs that select and override the
// configuration file. Empty fields leave the file value untouched.
type Config struct {
	ConfigPath string // hcl file, optional

	Address   string
	LogLevel  string
	LogFormat string
	// DBPath selects a SQLite store, GraphsDir a directory store. DBPath
	// wins when both are set.
	DBPath    string
	GraphsDir string
}

// LoadSettings reads the configuration file (or the defaults when none is
// given), applies the overrides and validates the result.
func LoadSettings(ctx context.Context, cfg Config) (*config.Settings, error) {
	settings := config.Default()
	if cfg.ConfigPath != "" {
		loaded, err := config.Load(ctx, cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	override(&settings.Server.Address, cfg.Address)
	override(&settings.Log.Level, cfg.LogLevel)
	override(&settings.Log.Format, cfg.LogFormat)
	switch {
	case cfg.DBPath != "":
		settings.Store = config.Store{Kind: config.StoreSQLite, Path: cfg.DBPath}
	case cfg.GraphsDir != "":
		settings.Store = config.Store{Kind: config.StoreDir, Path: cfg.GraphsDir}
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// sessionOptions converts validated search settings.
func sessionOptions(s config.Search) session.Options {
	return session.Options{
		Algorithm:     s.Algorithm,
		Heuristic:     s.Heuristic,
		Timeout:       s.Timeout,
		QueueSize:     s.QueueSize,
		Overflow:      visit.Overflow(s.Overflow),
		MaxConcurrent: int64(s.MaxConcurrent),
	}
}
