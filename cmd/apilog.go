package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/store"
)

var apilogCmd = &cobra.Command{
	Use:   "apilog",
	Short: "Inspect the local log of backend requests",
}

// openStore opens the local database without touching the network.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var apilogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent backend requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		endpoint, _ := cmd.Flags().GetString("endpoint")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryAPIEvents(cmd.Context(), store.QueryOpts{Limit: limit, Endpoint: endpoint})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No requests recorded.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-19s  %-20s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Endpoint", "Method", "Status", "Ms", "OK")
		fmt.Fprintln(w, strings.Repeat("─", 80))

		for _, e := range events {
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			status := "-"
			if e.Status != 0 {
				status = fmt.Sprintf("%d", e.Status)
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-20s  %-6s  %-6s  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.Endpoint, 20),
				e.Method,
				status,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var apilogViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View one recorded request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetAPIEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "ID:         %d\n", e.ID)
		fmt.Fprintf(w, "Time:       %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Request ID: %s\n", e.RequestID)
		fmt.Fprintf(w, "Endpoint:   %s\n", e.Endpoint)
		fmt.Fprintf(w, "Request:    %s %s\n", e.Method, e.Path)
		fmt.Fprintf(w, "Status:     %s\n", api.StatusText(e.Status))
		fmt.Fprintf(w, "Latency:    %dms\n", e.LatencyMs)
		fmt.Fprintf(w, "Success:    %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "Error:      %s\n", e.ErrorMessage)
		}
		return nil
	},
}

var apilogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts, failures and latency per endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().APIUsageByEndpoint(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(w, "No requests recorded.")
			return nil
		}

		fmt.Fprintf(w, "%-20s  %6s  %8s  %8s  %8s\n",
			"Endpoint", "Calls", "Failures", "Avg Ms", "Max Ms")
		fmt.Fprintln(w, strings.Repeat("─", 60))

		var totalCalls, totalFailures int
		for _, st := range stats {
			fmt.Fprintf(w, "%-20s  %6d  %8d  %8d  %8d\n",
				truncate(st.Endpoint, 20), st.Calls, st.Failures, st.AvgLatencyMs, st.MaxLatencyMs)
			totalCalls += st.Calls
			totalFailures += st.Failures
		}

		fmt.Fprintln(w, strings.Repeat("─", 60))
		fmt.Fprintf(w, "%-20s  %6d  %8d\n", "TOTAL", totalCalls, totalFailures)
		return nil
	},
}

func init() {
	apilogListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	apilogListCmd.Flags().StringP("endpoint", "e", "", "Filter by endpoint (e.g. next-insight, submit-answer)")
	apilogListCmd.Flags().Bool("failed", false, "Only show failed requests")

	apilogCmd.AddCommand(apilogListCmd)
	apilogCmd.AddCommand(apilogViewCmd)
	apilogCmd.AddCommand(apilogStatsCmd)
}
