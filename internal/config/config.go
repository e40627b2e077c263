package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix   = "HBD"
	DefaultHome = ".hbd"
	FileName    = "hbd.toml"
)

// Config is the node configuration, read from <home>/config/hbd.toml with
// HBD_* environment overrides.
type Config struct {
	Home      string `mapstructure:"home"`
	DBBackend string `mapstructure:"db_backend"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	ABCIAddr  string `mapstructure:"abci_addr"`
	Transport string `mapstructure:"transport"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_backend", "goleveldb")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "plain")
	v.SetDefault("abci_addr", "tcp://127.0.0.1:26658")
	v.SetDefault("transport", "socket")
}

// NewViper returns a viper instance with defaults and env binding for home.
func NewViper(home string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.Set("home", home)
	v.SetConfigFile(Path(home))
	v.SetConfigType("toml")
	return v
}

func Path(home string) string {
	return filepath.Join(home, "config", FileName)
}

// Load reads the config file if present. A missing file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("home is required")
	}
	switch c.DBBackend {
	case "goleveldb", "memdb":
	default:
		return fmt.Errorf("unsupported db_backend %q", c.DBBackend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "plain", "json":
	default:
		return fmt.Errorf("unsupported log_format %q", c.LogFormat)
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}
	if c.ABCIAddr == "" {
		return fmt.Errorf("abci_addr is required")
	}
	return nil
}

// DataDir is where the state database lives.
func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}

// WriteDefault writes the default config file under home, refusing to
// overwrite an existing one.
func WriteDefault(home string) (string, error) {
	path := Path(home)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, err
	}
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	if err := v.WriteConfigAs(path); err != nil {
		return path, fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Logger builds the node logger.
func (c Config) Logger() (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if c.LogFormat == "json" {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(os.Stderr, opts...), nil
}
