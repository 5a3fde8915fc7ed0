package main

import (
	"fmt"

	"taskflow/internal/domain"
	"taskflow/internal/repository"
	"taskflow/internal/service"

	"github.com/spf13/cobra"
)

// Columns are shared by every board, so only operators add them.
func columnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage the board columns shared by all users",
	}
	cmd.AddCommand(columnCreateCmd())
	cmd.AddCommand(columnListCmd())
	return cmd
}

func columnCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a column to every user's board",
		Long: `Add a column to every user's board. The id doubles as the task status.

Examples:
  taskflowctl column create --id review --title Review --color bg-purple-50 --order 4`,
		RunE: runColumnCreate,
	}

	cmd.Flags().String("id", "", "column id, lowercase letters, digits and dashes")
	cmd.Flags().String("title", "", "display title")
	cmd.Flags().String("color", "", "css class for the column header")
	cmd.Flags().Int("order", 0, "sort position (unset sorts last)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func columnFromFlags(cmd *cobra.Command) (domain.Column, error) {
	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")
	color, _ := cmd.Flags().GetString("color")
	col := domain.Column{ID: id, Title: title, Color: color}
	if cmd.Flags().Changed("order") {
		order, _ := cmd.Flags().GetInt("order")
		col.Order = &order
	}
	return col, col.Validate()
}

func runColumnCreate(cmd *cobra.Command, args []string) error {
	col, err := columnFromFlags(cmd)
	if err != nil {
		return err
	}
	pool, err := openPool(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	board := service.NewBoardService(nil, repository.NewColumnRepository(pool), nil, nil)
	created, err := board.CreateColumn(cmd.Context(), col)
	if err != nil {
		return fmt.Errorf("create column: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created column %s (%s)\n", created.ID, created.Title)
	return nil
}

func columnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the configured columns in board order",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			cols, err := service.NewBoardService(nil, repository.NewColumnRepository(pool), nil, nil).ListColumns(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range cols {
				order := "-"
				if c.Order != nil {
					order = fmt.Sprint(*c.Order)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-3s %-16s %-20s %s\n", order, c.ID, c.Title, c.Color)
			}
			return nil
		},
	}
}
