package main

import (
	"fmt"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/config"
	"github.com/UsamaZuberi/portfolio-v2/internal/server"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenHours   int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin token",
	Long:  "Signs an admin JWT with JWT_SECRET for the /api/admin endpoints.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject")
	tokenCmd.Flags().IntVar(&tokenHours, "hours", 0, "Lifetime in hours (default JWT_EXPIRATION_HOURS)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenHours < 0 {
		return fmt.Errorf("--hours must be positive, got %d", tokenHours)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenSubject, time.Duration(tokenHours)*time.Hour)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
