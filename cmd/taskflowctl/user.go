package main

import (
	"errors"
	"fmt"

	"taskflow/internal/db"
	"taskflow/internal/repository"
	"taskflow/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func openPool(cmd *cobra.Command) (*pgxpool.Pool, error) {
	dsn, _ := cmd.Flags().GetString("database-url")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	return db.Open(cmd.Context(), dsn)
}

func initJWT(cmd *cobra.Command) error {
	secret, _ := cmd.Flags().GetString("jwt-secret")
	if secret == "" {
		return errors.New("JWT_SECRET not set")
	}
	service.InitJWT(secret, 0)
	return nil
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a confirmed user and print a session token for it",
		Long: `Create a confirmed user account, skipping the email round trip.

Examples:
  taskflowctl user create --email dev@example.com --password devpassword`,
		RunE: runUserCreate,
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	if err := initJWT(cmd); err != nil {
		return err
	}
	pool, err := openPool(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	auth := service.NewAuthService(
		repository.NewUserRepository(pool),
		repository.NewTokenRepository(pool),
		service.NewRedisRevocations(nil),
	)

	ctx := cmd.Context()
	user, code, err := auth.SignUp(ctx, email, password, password)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	sess, err := auth.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\nemail:   %s\ntoken:   %s\n", user.ID, user.Email, sess.Token)
	return nil
}
