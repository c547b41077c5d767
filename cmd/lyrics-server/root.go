package main

import (
	"os"
	"os/signal"
	"syscall"

	"lyrics-search/internal/app"
	"lyrics-search/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	host       string
	port       int
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:          "lyrics-server",
	Short:        "HTTP service that searches song lyrics",
	Version:      version,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/lyrics-search/config.toml)")
	rootCmd.Flags().StringVar(&host, "host", config.DefaultHost, "listen host")
	rootCmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "listen port")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "debug mode: verbose logs and stack traces")
}

// loadConfig reads the file and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = host
	}
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("debug") {
		cfg.Server.Debug = debug
	}
	if cfg.Server.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
