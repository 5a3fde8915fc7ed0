package main

import (
	"fmt"
	"time"

	"taskflow/internal/service"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for an existing user id",
		Long: `Issue a session token without a password, for smoke tests and support.

Examples:
  taskflowctl token --user-id 6f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initJWT(cmd); err != nil {
				return err
			}
			userID, _ := cmd.Flags().GetString("user-id")
			token, claims, err := service.GenerateJWT(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", claims.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().String("user-id", "", "user id (uuid)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
