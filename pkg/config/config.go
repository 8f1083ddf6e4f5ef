// Package config loads pathgraph settings from a TOML file and the
// environment.
//
// Precedence, highest first: command-line flags (applied by the CLI),
// PATHGRAPH_* environment variables (a .env file in the working directory is
// loaded first), the config file, built-in defaults.
//
// Example pathgraph.toml:
//
//	[palette]
//	background = "#000000"
//	path = "#ff0000"
//	stair = "#00ff00"
//
//	[extract]
//	policy = "warn"
//	workers = 8
//
//	[output]
//	formats = ["xml", "json"]
//	dir = "maps"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
//
//	[labels.library-2]
//	"12,40" = "main entrance"
//	"88,40" = "north stairs"
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/pathgraph/pkg/cache"
	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/export"
	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/pipeline"
	"github.com/matzehuels/pathgraph/pkg/raster"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "pathgraph.toml"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// DefaultAddr is the listen address of the HTTP server.
const DefaultAddr = ":8080"

// Environment variables.
const (
	EnvCache    = "PATHGRAPH_CACHE"
	EnvRedisURL = "PATHGRAPH_REDIS_URL"
	EnvAddr     = "PATHGRAPH_ADDR"
	EnvPolicy   = "PATHGRAPH_POLICY"
	EnvWorkers  = "PATHGRAPH_WORKERS"
	EnvFormats  = "PATHGRAPH_FORMATS"
)

// Config holds every setting.
type Config struct {
	Palette raster.Palette `toml:"palette"`
	Extract ExtractConfig  `toml:"extract"`
	Output  OutputConfig   `toml:"output"`
	Cache   CacheConfig    `toml:"cache"`
	Server  ServerConfig   `toml:"server"`

	// Labels maps "<name>-<floor>" to node names keyed by "x,y".
	Labels map[string]map[string]string `toml:"labels"`

	// File is the config file that was loaded, empty when none was.
	File string `toml:"-"`
}

type ExtractConfig struct {
	Policy  string `toml:"policy"`
	Workers int    `toml:"workers"`
}

type OutputConfig struct {
	Formats []string `toml:"formats"`
	Dir     string   `toml:"dir"`
}

type CacheConfig struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as "72h" or "30m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Palette: raster.DefaultPalette,
		Extract: ExtractConfig{Policy: string(raster.DefaultPolicy), Workers: pipeline.DefaultWorkers},
		Output:  OutputConfig{Formats: []string{export.DefaultFormat}},
		Cache:   CacheConfig{Backend: BackendFile, TTL: Duration(cache.DefaultTTL)},
		Server:  ServerConfig{Addr: DefaultAddr},
	}
}

// Load reads the config file at path over the defaults. With an empty path,
// DefaultFile is read if it exists. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return cfg, nil
		}
		path = DefaultFile
	}
	if err := perrors.ValidatePath(path); err != nil {
		return nil, err
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, perrors.New(perrors.ErrCodeInvalidConfig,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none is
// given) into the process environment. Missing files are ignored and
// variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

// ApplyEnv overrides settings from PATHGRAPH_* variables found by lookup,
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCache); ok && v != "" {
		c.Cache.Backend = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Cache.RedisURL = v
		if _, set := lookup(EnvCache); !set {
			c.Cache.Backend = BackendRedis
		}
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvPolicy); ok && v != "" {
		c.Extract.Policy = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return perrors.New(perrors.ErrCodeInvalidConfig, "%s: %q is not a number", EnvWorkers, v)
		}
		c.Extract.Workers = n
	}
	if v, ok := lookup(EnvFormats); ok && v != "" {
		formats, err := export.ParseFormats(v)
		if err != nil {
			return err
		}
		c.Output.Formats = formats
	}
	return c.Validate()
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := c.Palette.Validate(); err != nil {
		return err
	}
	if _, err := raster.ParsePolicy(c.Extract.Policy); err != nil {
		return err
	}
	if c.Extract.Workers < 0 || c.Extract.Workers > pipeline.MaxWorkers {
		return perrors.New(perrors.ErrCodeInvalidConfig,
			"extract.workers must be between 0 and %d", pipeline.MaxWorkers)
	}
	if err := export.ValidateFormats(c.Output.Formats); err != nil {
		return err
	}
	if c.Output.Dir != "" {
		if err := perrors.ValidatePath(c.Output.Dir); err != nil {
			return err
		}
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if err := perrors.ValidateURL(c.Cache.RedisURL); err != nil {
			return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig,
			"cache.backend: %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}

	_, err := c.parseLabels()
	return err
}

// LabelsFor returns the node labels configured for a map floor.
func (c *Config) LabelsFor(name string, floor int) map[graph.Coord]string {
	all, _ := c.parseLabels()
	return all[labelKey(name, floor)]
}

func labelKey(name string, floor int) string {
	return name + "-" + strconv.Itoa(floor)
}

func (c *Config) parseLabels() (map[string]map[graph.Coord]string, error) {
	out := make(map[string]map[graph.Coord]string, len(c.Labels))
	for key, entries := range c.Labels {
		name, floorText, ok := strings.Cut(key, "-")
		floor, err := strconv.Atoi(floorText)
		if !ok || name == "" || err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidConfig,
				"labels.%s: expected <name>-<floor>", key)
		}
		labels := make(map[graph.Coord]string, len(entries))
		for pos, label := range entries {
			coord, err := graph.ParseCoord(pos)
			if err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "labels.%s", key)
			}
			labels[coord] = label
		}
		out[labelKey(name, floor)] = labels
	}
	return out, nil
}

// PipelineOptions returns pipeline options for one map floor.
func (c *Config) PipelineOptions(name string, floor int) pipeline.Options {
	return pipeline.Options{
		Name:    name,
		Floor:   floor,
		Palette: c.Palette,
		Policy:  c.Extract.Policy,
		Workers: c.Extract.Workers,
		Labels:  c.LabelsFor(name, floor),
		Formats: append([]string(nil), c.Output.Formats...),
	}
}
