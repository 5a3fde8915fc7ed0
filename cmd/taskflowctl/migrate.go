package main

import (
	"fmt"

	"taskflow/internal/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		Long: `Apply every embedded SQL migration not yet recorded in schema_migrations.

Examples:
  taskflowctl migrate
  taskflowctl migrate --list`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("list", false, "print the embedded migrations without applying them")
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")
	if list {
		names, err := db.Migrations()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	}

	pool, err := openPool(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := db.Migrate(cmd.Context(), pool)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	}
	for _, n := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", n)
	}
	return nil
}
