package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jandubois/readycheck/internal/config"
)

// Version is set at build time via -ldflags "-X github.com/jandubois/readycheck/cmd.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "readycheck",
	Short:   "Migration readiness checks for Debian/Alpine hosts",
	Long:    `Readycheck runs a fixed battery of read-only diagnostic probes against target hosts, classifies the results, and renders a prioritized readiness report.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().String("config", "", "Config file (default readycheck.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringP("database", "d", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	config.SetDefaults()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		slog.Error("failed to bind flags", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("readycheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("READYCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", "error", err)
			os.Exit(1)
		}
	}

	setupLogging(viper.GetString("log-level"))

	if viper.GetBool("no-color") {
		color.NoColor = true
	}
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func getDatabasePath() string {
	path := viper.GetString("database")
	if path == "" {
		path = os.Getenv("DATABASE_PATH")
	}
	if path == "" {
		// Default to a reasonable location
		path = "/var/lib/readycheck/readycheck.db"
	}
	return path
}
