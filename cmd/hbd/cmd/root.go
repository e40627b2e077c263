package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satoshitonakomito/happybomber/internal/config"
)

const flagHome = "home"

// NewRootCmd creates the hbd root command. It is called once in main.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hbd",
		Short:         "HappyBomber escrow settlement daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().String(flagHome, defaultHome(), "node home directory")

	rootCmd.AddCommand(
		startCmd(),
		initCmd(),
		genesisCmd(),
		keygenCmd(),
		vaultCmd(),
		txCmd(),
		versionCmd(),
	)
	return rootCmd
}

func defaultHome() string {
	if h := os.Getenv(config.EnvPrefix + "_HOME"); h != "" {
		return h
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return config.DefaultHome
	}
	return filepath.Join(dir, config.DefaultHome)
}

func loadConfig(cmd *cobra.Command) (config.Config, *viper.Viper, error) {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return config.Config{}, nil, err
	}
	v := config.NewViper(home)
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(v)
	return cfg, v, err
}
