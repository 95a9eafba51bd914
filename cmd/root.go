/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/EO-DataHub/eodhp-user-sync/db"
	"github.com/EO-DataHub/eodhp-user-sync/internal/appconfig"
	"github.com/EO-DataHub/eodhp-user-sync/internal/checks"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
	host       string
	port       int

	appCfg *appconfig.Config
	userDB *db.UserDB
)

var rootCmd = &cobra.Command{
	Use:   "user-sync",
	Short: "User Sync",
	Long:  `User Sync keeps local users and groups in step with the identity service roster.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn",
		"sets the log level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(),
		"path to the config file")
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// commonSetUp sets up logging, loads the config and connects to the database.
// Unless a migration command is running, the configured groups are then checked.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := os.Setenv("DATABASE_URL", appCfg.Database.Source); err != nil {
		log.Fatal().Err(err).Msg("Error setting DATABASE_URL")
	}

	logger := log.With().Str("component", "db").Logger()
	userDB, err = db.NewUserDB(&logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize UserDB")
	}

	if checks.IsMigrationCommand(os.Args[1:]) {
		log.Debug().Msg("Migration command, skipping group check")
		return
	}

	if failures := runGroupCheck(context.Background()); len(failures) > 0 {
		log.Error().Int("failures", len(failures)).Msg("Startup group check reported failures")
	}
}

// runGroupCheck ensures the configured groups exist and logs every failure.
func runGroupCheck(ctx context.Context) []checks.Failure {
	logger := log.With().Str("component", "checks").Logger()
	checker := checks.NewGroupChecker(userDB, &logger)
	checker.Metrics = syncMetrics

	failures := checker.Check(ctx, appCfg.Groups.Custom)
	for _, f := range failures {
		logger.Error().Msg(f.Error())
	}
	return failures
}

func setLogging(level string) {
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}
