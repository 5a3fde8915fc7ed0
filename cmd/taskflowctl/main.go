package main

import (
	"fmt"
	"os"

	"taskflow/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taskflowctl",
		Short:         "Operator tool for the TaskFlow board service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("database-url", os.Getenv("DATABASE_URL"), "Postgres DSN (default $DATABASE_URL)")
	rootCmd.PersistentFlags().String("jwt-secret", os.Getenv("JWT_SECRET"), "session signing secret (default $JWT_SECRET)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(columnCmd())

	return rootCmd
}
