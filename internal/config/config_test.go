package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(NewViper(home))
	require.NoError(t, err)
	require.Equal(t, home, cfg.Home)
	require.Equal(t, "goleveldb", cfg.DBBackend)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "socket", cfg.Transport)
	require.Equal(t, filepath.Join(home, "data"), cfg.DataDir())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	home := t.TempDir()
	path, err := WriteDefault(home)
	require.NoError(t, err)
	require.FileExists(t, path)

	_, err = WriteDefault(home)
	require.Error(t, err, "must not overwrite")

	require.NoError(t, os.WriteFile(path, []byte("db_backend = \"memdb\"\nlog_format = \"json\"\n"), 0o644))
	t.Setenv("HBD_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper(home))
	require.NoError(t, err)
	require.Equal(t, "memdb", cfg.DBBackend)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "debug", cfg.LogLevel)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestValidate(t *testing.T) {
	base := Config{Home: "/tmp/x", DBBackend: "memdb", LogLevel: "info", LogFormat: "plain", ABCIAddr: "tcp://127.0.0.1:1", Transport: "socket"}
	require.NoError(t, base.Validate())

	for name, mut := range map[string]func(*Config){
		"home":      func(c *Config) { c.Home = "" },
		"backend":   func(c *Config) { c.DBBackend = "rocksdb" },
		"level":     func(c *Config) { c.LogLevel = "loud" },
		"format":    func(c *Config) { c.LogFormat = "xml" },
		"transport": func(c *Config) { c.Transport = "udp" },
		"addr":      func(c *Config) { c.ABCIAddr = "" },
	} {
		c := base
		mut(&c)
		require.Error(t, c.Validate(), name)
	}
}
