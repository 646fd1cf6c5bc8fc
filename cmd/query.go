package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/adaptlearn/internal/api"
	"github.com/abhisek/adaptlearn/internal/screens/domains"
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List learning domains and which ones you have started",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireSignIn(); err != nil {
			return err
		}

		list, err := d.client.DomainsWithStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("list domains: %w", err)
		}
		return render(cmd.OutOrStdout(), format, list, func(w io.Writer) {
			printDomains(w, list)
		})
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview <domain-id>",
	Short: "Show topic progress for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid domain ID %q: %w", args[0], err)
		}
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireSignIn(); err != nil {
			return err
		}

		ov, err := d.client.Overview(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get overview: %w", err)
		}
		return render(cmd.OutOrStdout(), format, ov, func(w io.Writer) {
			printOverview(w, ov)
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your account and overall progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.requireSignIn(); err != nil {
			return err
		}

		p, err := d.client.Profile(cmd.Context())
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return render(cmd.OutOrStdout(), format, p, func(w io.Writer) {
			printProfile(w, p)
		})
	},
}

func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("output")
	switch f {
	case "table", "json", "yaml":
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", f)
	}
}

// render writes v as JSON or YAML, or calls table for the default format.
func render(w io.Writer, format string, v any, table func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		table(w)
		return nil
	}
}

func printDomains(w io.Writer, list []api.Domain) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No domains available.")
		return
	}
	for i, cat := range domains.Group(list) {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, cat.Title)
		fmt.Fprintln(w, strings.Repeat("─", 60))
		for _, d := range cat.Domains {
			status := ""
			if d.InProgress {
				status = "in progress"
			}
			fmt.Fprintf(w, "%-5d  %-24s  %s\n", d.ID, truncate(d.Name, 24), status)
		}
	}
}

func printOverview(w io.Writer, ov *api.Overview) {
	fmt.Fprintln(w, ov.DomainName)
	fmt.Fprintf(w, "%-3s  %-28s  %5s  %-9s  %s\n", "#", "Topic", "Level", "Insights", "Status")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for i, t := range ov.Topics {
		fmt.Fprintf(w, "%-3d  %-28s  %5d  %4d/%-4d  %s\n",
			i+1,
			truncate(t.TopicName, 28),
			t.Level,
			t.CompletedInsights,
			t.RequiredInsights,
			topicStatus(t),
		)
	}
}

func topicStatus(t api.TopicOverview) string {
	switch {
	case t.ReviewAvailable:
		return "review ready"
	case t.Current:
		return "current"
	case t.Unlocked:
		return "unlocked"
	default:
		return "locked"
	}
}

func printProfile(w io.Writer, p *api.Profile) {
	fmt.Fprintf(w, "Username:   %s\n", p.Username)
	fmt.Fprintf(w, "Email:      %s\n", p.Email)
	fmt.Fprintf(w, "Progress:   %.0f%%\n", p.OverallProgress)
	fmt.Fprintf(w, "Domains:    %d started\n", p.StartedDomains)
	fmt.Fprintf(w, "Insights:   %d completed\n", p.CompletedInsights)
	for _, d := range p.Domains {
		fmt.Fprintf(w, "  - %s (%s)\n", d.Name, d.Category)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	for _, c := range []*cobra.Command{domainsCmd, overviewCmd, profileCmd} {
		c.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")
	}
}
