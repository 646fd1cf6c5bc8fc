package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/adaptlearn/internal/app"
	"github.com/abhisek/adaptlearn/internal/learning"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	noSplash, _ := cmd.Flags().GetBool("no-splash")
	sessionLog := d.log.Named("learning")
	orch := learning.NewOrchestrator(d.client, learning.NewStore(sessionLog), sessionLog)

	d.log.Info("starting", zap.String("version", version), zap.Bool("signed_in", d.tokens.SignedIn()))
	return app.Run(app.Options{
		Orch:     orch,
		Auth:     d.auth,
		Profiles: d.client,
		Signals:  d.signals,
		Log:      d.log.Named("app"),
		NoSplash: noSplash,
	})
}
