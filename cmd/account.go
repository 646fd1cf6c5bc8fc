package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and store the token locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		password, err := flagOrSecret(cmd, in, "password", "Password: ")
		if err != nil {
			return err
		}

		if err := d.auth.Login(cmd.Context(), args[0], password); err != nil {
			return fmt.Errorf("login: %s", auth.LoginErrorMessage(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", d.tokens.Username())
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		in := bufio.NewReader(cmd.InOrStdin())
		email, err := flagOrPrompt(cmd, in, "email", "Email: ")
		if err != nil {
			return err
		}
		password, err := flagOrSecret(cmd, in, "password", "Password: ")
		if err != nil {
			return err
		}
		// A password given as a flag is its own confirmation.
		confirm := password
		if p, _ := cmd.Flags().GetString("password"); p == "" {
			if confirm, err = promptSecret(cmd, in, "Confirm password: "); err != nil {
				return err
			}
		}

		reg := api.Registration{Username: args[0], Email: email, Password: password}
		if err := d.auth.Register(cmd.Context(), reg, confirm); err != nil {
			return fmt.Errorf("register: %s", auth.RegisterErrorMessage(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are signed in.\n", d.tokens.Username())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if !d.tokens.SignedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		name := d.tokens.Username()
		if err := d.auth.Logout(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s.\n", name)
		return nil
	},
}

// flagOrPrompt returns the named flag, or reads a line from in when it is unset.
func flagOrPrompt(cmd *cobra.Command, in *bufio.Reader, flag, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	return prompt(cmd, in, label)
}

// flagOrSecret is flagOrPrompt without echoing the typed value.
func flagOrSecret(cmd *cobra.Command, in *bufio.Reader, flag, label string) (string, error) {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v, nil
	}
	return promptSecret(cmd, in, label)
}

// promptSecret reads a line with echo off when stdin is a terminal, and
// falls back to a plain read for piped input.
func promptSecret(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	f, ok := cmd.InOrStdin().(interface{ Fd() uintptr })
	if !ok || !term.IsTerminal(f.Fd()) {
		return prompt(cmd, in, label)
	}
	fmt.Fprint(cmd.ErrOrStderr(), label)
	b, err := term.ReadPassword(f.Fd())
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return string(b), nil
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().String("password", "", "Password (prompted for when omitted)")

	registerCmd.Flags().String("email", "", "Email address (prompted for when omitted)")
	registerCmd.Flags().String("password", "", "Password (prompted for when omitted)")
}
