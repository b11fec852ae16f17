package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"reeldesk/internal/bootstrap"
	"reeldesk/internal/bootstrap/logging"
	"reeldesk/internal/errs"
	"reeldesk/internal/usecase/review"
	"reeldesk/internal/usecase/reviewconsole"
)

var reviewConsoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive review console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		actorID, _ := cmd.Flags().GetString("actor")
		role, _ := cmd.Flags().GetString("role")
		state, _ := cmd.Flags().GetString("state")
		campaignID, _ := cmd.Flags().GetString("campaign")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := reviewconsole.NewConsoleModel(ctx, svc, reviewconsole.ConsoleOptions{
			ActorID:         actorID,
			Role:            role,
			StateFilter:     state,
			CampaignFilter:  campaignID,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run review console")
		}
		return nil
	}),
}

func init() {
	reviewCmd.AddCommand(reviewConsoleCmd)

	reviewConsoleCmd.Flags().String("actor", "", "Actor id acting from the console")
	reviewConsoleCmd.Flags().String("role", "admin", "Console role (creator|admin|client)")
	reviewConsoleCmd.Flags().String("state", "", "Optional state filter")
	reviewConsoleCmd.Flags().String("campaign", "", "Optional campaign filter")
	reviewConsoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
