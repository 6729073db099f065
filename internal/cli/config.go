package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/shapegrid/pkg/cache"
	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/pipeline"
)

// Cache backends selectable in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

const configFileName = "config.toml"

// Config is the optional TOML config file:
//
//	[cache]
//	backend = "redis"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[render]
//	formats = ["svg", "xlsx"]
//	tolerance = 0.5
//
//	[server]
//	addr = "127.0.0.1:8080"
type Config struct {
	Cache  CacheConfig       `toml:"cache"`
	Redis  cache.RedisConfig `toml:"redis"`
	Mongo  cache.MongoConfig `toml:"mongo"`
	Render RenderConfig      `toml:"render"`
	Server ServerConfig      `toml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// RenderConfig holds defaults for commands that synthesize tables.
type RenderConfig struct {
	Formats   []string `toml:"formats"`
	Tolerance float64  `toml:"tolerance"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() *Config {
	return &Config{Cache: CacheConfig{Backend: backendFile}}
}

// loadConfig reads path, or the default location when path is empty.
// A missing default file is not an error; a missing explicit one is.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return defaultConfig(), nil
		}
		path = filepath.Join(dir, configFileName)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Cache.Backend {
	case backendFile, backendRedis, backendMongo, backendNone:
	case "":
		cfg.Cache.Backend = backendFile
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be file, redis, mongo or none)", cfg.Cache.Backend)
	}
	if cfg.Render.Tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.tolerance must not be negative")
	}
	if err := pipeline.ValidateFormats(cfg.Render.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.formats")
	}
	return nil
}
