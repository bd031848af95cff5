package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// Store kinds.
const (
	StoreSQLite = "sqlite"
	StoreDir    = "dir"
)

// Settings is the resolved configuration.
type Settings struct {
	Server Server
	Store  Store
	Search Search
	Log    Log
}

// Server configures the HTTP and socket.io listener.
type Server struct {
	Address     string
	CORSOrigins []string
	// RateLimit is the sustained number of route requests per second per
	// client address; zero disables limiting.
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
}

// Store selects where graphs come from.
type Store struct {
	Kind string
	Path string
}

// Search holds the defaults for search sessions.
type Search struct {
	Algorithm     string
	Heuristic     string
	Timeout       time.Duration
	QueueSize     int
	Overflow      string
	MaxConcurrent int
}

// Log configures the logger.
type Log struct {
	Level  string
	Format string
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	return &Settings{
		Server: Server{
			Address:         ":8080",
			CORSOrigins:     []string{"*"},
			RateLimit:       20,
			RateBurst:       40,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: Store{
			Kind: StoreDir,
			Path: "graphs",
		},
		Search: Search{
			Algorithm: search.NameHeuristicGuided,
			Heuristic: heuristic.Haversine.String(),
			Timeout:   30 * time.Second,
			QueueSize: visit.DefaultQueueSize,
			Overflow:  string(visit.DropOldest),
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
	}
}

// fileRoot mirrors the blocks of a configuration file. Pointers tell absent
// attributes apart from zero values.
type fileRoot struct {
	Server *serverBlock `hcl:"server,block"`
	Store  *storeBlock  `hcl:"store,block"`
	Search *searchBlock `hcl:"search,block"`
	Log    *logBlock    `hcl:"log,block"`
}

type serverBlock struct {
	Address         *string  `hcl:"address,optional"`
	CORSOrigins     []string `hcl:"cors_origins,optional"`
	RateLimit       *float64 `hcl:"rate_limit,optional"`
	RateBurst       *int     `hcl:"rate_burst,optional"`
	ShutdownTimeout *string  `hcl:"shutdown_timeout,optional"`
}

type storeBlock struct {
	Kind *string `hcl:"kind,optional"`
	Path *string `hcl:"path,optional"`
}

type searchBlock struct {
	Algorithm     *string `hcl:"algorithm,optional"`
	Heuristic     *string `hcl:"heuristic,optional"`
	Timeout       *string `hcl:"timeout,optional"`
	QueueSize     *int    `hcl:"queue_size,optional"`
	Overflow      *string `hcl:"overflow,optional"`
	MaxConcurrent *int    `hcl:"max_concurrent,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Load reads the file at path. An empty path returns Default.
func Load(ctx context.Context, path string) (*Settings, error) {
	if path == "" {
		ctxlog.FromContext(ctx).Debug("No configuration file given, using defaults.")
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read configuration: %w", err)
	}
	return Parse(ctx, src, path)
}

// Parse decodes HCL source. filename is used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing configuration.", "file", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(os.Environ()), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	s := Default()
	if err := root.apply(s); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Debug("Configuration loaded.", "store_kind", s.Store.Kind, "address", s.Server.Address)
	return s, nil
}

// evalContext exposes the environment as the `env` object.
func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func (r *fileRoot) apply(s *Settings) error {
	if b := r.Server; b != nil {
		set(&s.Server.Address, b.Address)
		if b.CORSOrigins != nil {
			s.Server.CORSOrigins = b.CORSOrigins
		}
		set(&s.Server.RateLimit, b.RateLimit)
		set(&s.Server.RateBurst, b.RateBurst)
		if err := setDuration(&s.Server.ShutdownTimeout, b.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
			return err
		}
	}
	if b := r.Store; b != nil {
		set(&s.Store.Kind, b.Kind)
		set(&s.Store.Path, b.Path)
	}
	if b := r.Search; b != nil {
		set(&s.Search.Algorithm, b.Algorithm)
		set(&s.Search.Heuristic, b.Heuristic)
		set(&s.Search.QueueSize, b.QueueSize)
		set(&s.Search.Overflow, b.Overflow)
		set(&s.Search.MaxConcurrent, b.MaxConcurrent)
		if err := setDuration(&s.Search.Timeout, b.Timeout, "search.timeout"); err != nil {
			return err
		}
	}
	if b := r.Log; b != nil {
		set(&s.Log.Level, b.Level)
		set(&s.Log.Format, b.Format)
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

// Validate checks the settings for values no component would accept.
func (s *Settings) Validate() error {
	if _, err := search.New(s.Search.Algorithm, s.Search.Heuristic); err != nil {
		return err
	}
	if _, err := visit.ParseOverflow(s.Search.Overflow); err != nil {
		return err
	}
	if s.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must not be negative")
	}
	if s.Search.QueueSize < 0 {
		return fmt.Errorf("search.queue_size must not be negative")
	}
	if s.Search.MaxConcurrent < 0 {
		return fmt.Errorf("search.max_concurrent must not be negative")
	}
	switch s.Store.Kind {
	case StoreSQLite, StoreDir:
	default:
		return fmt.Errorf("invalid store.kind %q: must be %q or %q", s.Store.Kind, StoreSQLite, StoreDir)
	}
	if s.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if s.Server.RateLimit < 0 || s.Server.RateBurst < 0 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must not be negative")
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: must be 'debug', 'info', 'warn', or 'error'", s.Log.Level)
	}
	if s.Log.Format != "text" && s.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q: must be 'text' or 'json'", s.Log.Format)
	}
	return nil
}
