package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/lake-cli/internal/auth"
	"github.com/quocvuong92/lake-cli/internal/display"
)

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with Amperity",
		Long: `Authenticate with Amperity using the OAuth device flow.

You will be shown a code to enter in your browser. The resulting token is
stored locally for future use.

Examples:
  lake login`,
		RunE: runLogin,
	}
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored Amperity credentials",
		Long: `Remove the stored Amperity token. Run 'lake login' again to
re-authenticate.

Examples:
  lake logout`,
		RunE: runLogout,
	}
}

// NewAuthStatusCmd creates the auth-status command.
func NewAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth-status",
		Short: "Show authentication status",
		RunE:  runAuthStatus,
	}
}

func runLogin(cmd *cobra.Command, args []string) error {
	if auth.IsLoggedIn() {
		fmt.Println("Already logged in.")
		fmt.Println("Run 'lake logout' first to re-authenticate.")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nLogin cancelled.")
		cancel()
		os.Exit(1)
	}()

	amperity := auth.NewAmperity()

	fmt.Println("Requesting device code...")
	code, err := amperity.StartDeviceFlow(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("To authenticate, please:")
	fmt.Printf("  1. Open: %s\n", code.VerificationURI)
	fmt.Printf("  2. Enter code: %s\n", code.UserCode)
	fmt.Println()

	sp := display.NewSpinner("Waiting for authorization...")
	sp.Start()
	token, err := amperity.PollToken(ctx, code)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := auth.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Println()
	fmt.Println("Successfully logged in.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if !auth.IsLoggedIn() {
		fmt.Println("Not currently logged in.")
		return nil
	}
	if err := auth.DeleteToken(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	fmt.Println("Successfully logged out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if auth.IsLoggedIn() {
		path, _ := auth.TokenPath()
		fmt.Println("Amperity: logged in")
		fmt.Printf("Token stored at: %s\n", path)
	} else {
		fmt.Println("Amperity: not logged in")
		fmt.Println("Run 'lake login' to authenticate")
	}
	return nil
}
