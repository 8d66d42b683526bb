package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/dailyglow/internal/cli"
	"github.com/terraincognita07/dailyglow/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:           "dailyglow",
		Short:         "Daily Glow engagement service",
		Long:          `Serves streaks, badges, achievements and daily challenges for the Daily Glow journal app.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the midnight scheduler",
		RunE:  runServeCommand,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE:  runMigrateCommand,
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert the default achievement, badge and challenge catalog",
		RunE:  runSeedCommand,
	}
	streakCmd = &cobra.Command{
		Use:   "streak",
		Short: "Print the reconciled streak state of one user",
		RunE:  runStreakCommand,
	}
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		RunE:  runTokenCommand,
	}

	envFile  string
	userFlag string
	tokenTTL time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(streakCmd)
	streakCmd.Flags().StringVar(&userFlag, "user", "", "user id (uuid)")
	_ = streakCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&userFlag, "user", "", "user id (uuid)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	time.Local = cfg.Location
	return cfg, nil
}

func withBackend(cmd *cobra.Command, run func(ctx context.Context, cfg config.Config, backend *cli.Backend) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	backend, err := cli.OpenBackend(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer backend.Close()
	return run(ctx, cfg, backend)
}

func runMigrateCommand(cmd *cobra.Command, _ []string) error {
	return withBackend(cmd, func(ctx context.Context, _ config.Config, backend *cli.Backend) error {
		return cli.RunMigrateCommand(ctx, backend, cmd.OutOrStdout())
	})
}

func runSeedCommand(cmd *cobra.Command, _ []string) error {
	return withBackend(cmd, func(ctx context.Context, _ config.Config, backend *cli.Backend) error {
		return cli.RunSeedCommand(ctx, backend, cmd.OutOrStdout())
	})
}

func runStreakCommand(cmd *cobra.Command, _ []string) error {
	return withBackend(cmd, func(ctx context.Context, cfg config.Config, backend *cli.Backend) error {
		return cli.RunStreakCommand(ctx, backend.Store, userFlag, cfg.Location, cmd.OutOrStdout())
	})
}

func runTokenCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}
	return cli.RunTokenCommand([]byte(cfg.JWTSecret), userFlag, tokenTTL, cmd.OutOrStdout())
}
