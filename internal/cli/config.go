package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/truthlie/internal/factory"
	redisstorage "github.com/mcoot/truthlie/internal/storage/redis"
)

// EnvPrefix is prepended to every environment variable the CLI reads
const EnvPrefix = "TRUTHLIE"

// Config holds CLI configuration
type Config struct {
	Storage     string
	DataDir     string
	RedisURL    string
	RedisPrefix string
	EnvFile     string
	Output      string
	Voter       string
	Verbose     bool
	Yes         bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Storage:     factory.StorageTypeFile,
		DataDir:     defaultDataDir(),
		RedisURL:    redisstorage.DefaultConfig().URL,
		RedisPrefix: redisstorage.DefaultConfig().KeyPrefix,
		EnvFile:     ".env",
		Output:      "text",
	}
}

func (c *Config) validate() error {
	switch c.Storage {
	case factory.StorageTypeMemory, factory.StorageTypeFile, factory.StorageTypeRedis:
	default:
		return fmt.Errorf("invalid storage %q (must be memory, file or redis)", c.Storage)
	}
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("invalid output %q (must be text or json)", c.Output)
	}
	if c.Storage == factory.StorageTypeRedis && c.RedisURL == "" {
		return errors.New("--redis-url is required when --storage=redis")
	}
	return nil
}

// factoryConfig translates the CLI settings into application settings
func (c *Config) factoryConfig(logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
		DataDir:     c.DataDir,
	}
	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.KeyPrefix = c.RedisPrefix
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// logger writes JSON logs to w when verbose and discards them otherwise
func (c *Config) logger(w io.Writer) *slog.Logger {
	if !c.Verbose {
		w = io.Discard
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// bindEnv lets TRUTHLIE_* environment variables fill in any flag not set
// on the command line
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// loadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return factory.DefaultDataDir
	}
	return filepath.Join(home, factory.DefaultDataDir)
}
