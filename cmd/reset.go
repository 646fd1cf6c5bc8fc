package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Sign out and delete the local request log",
	Long:  "Clears the stored token and every recorded backend request. Learning progress lives on the server and is not affected.",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			answer, err := prompt(cmd, bufio.NewReader(cmd.InOrStdin()), "Sign out and delete local data? [y/N] ")
			if err != nil {
				return err
			}
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if err := s.TokenRepo().Clear(ctx); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		n, err := s.EventRepo().Purge(ctx)
		if err != nil {
			return fmt.Errorf("purge request log: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed out; removed %d logged requests.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
