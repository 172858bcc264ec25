package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ordersync/ordersync/pkg/session"
)

var (
	loginEmail    string
	loginPassword string
)

// ordersync login — authenticate and persist the session token.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the order service",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := promptCredentials()
		if err != nil {
			return err
		}

		_, sess := newSession()
		if err := sess.Login(cmd.Context(), session.Credentials{Email: email, Password: password}); err != nil {
			return err
		}
		if !sess.IsAuthenticated() {
			return fmt.Errorf("login failed: %s", sess.Err())
		}

		fmt.Printf("Logged in as %s\n", email)
		return nil
	},
}

// ordersync logout — drop the local session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess := newSession()
		sess.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

// ordersync whoami — show the current session state.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sess := newSession()
		if !sess.IsAuthenticated() {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Println("Logged in (token present).")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
}

func promptCredentials() (string, string, error) {
	email := loginEmail
	if email == "" {
		fmt.Print("Email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", "", err
		}
		password = string(raw)
	}
	return email, password, nil
}
