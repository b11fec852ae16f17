package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"reeldesk/internal/bootstrap"
	"reeldesk/internal/bootstrap/logging"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
	"reeldesk/internal/usecase/review"
)

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions matching a filter",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		state, _ := cmd.Flags().GetString("state")
		campaignID, _ := cmd.Flags().GetString("campaign")
		creatorID, _ := cmd.Flags().GetString("creator")

		items, err := svc.ListSubmissions(ctx, review.ListSubmissionsInput{
			State:      state,
			CampaignID: campaignID,
			CreatorID:  creatorID,
		})
		if err != nil {
			return errs.Wrap(err, "list submissions")
		}

		for _, item := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] v%d campaign=%s creator=%s %s\n",
				item.SubmissionID, item.State, item.Version, item.CampaignID, item.CreatorID, item.Content.Ref)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d submissions\n", len(items))
		return nil
	}),
}

var reviewShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one submission with its audit history",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		submissionID, _ := cmd.Flags().GetString("id")
		detail, err := svc.GetSubmission(ctx, submissionID)
		if err != nil {
			return errs.Wrap(err, "get submission")
		}

		sub := detail.Submission
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Submission: %s\n", sub.SubmissionID)
		fmt.Fprintf(out, "State:      %s (version %d)\n", sub.State, sub.Version)
		fmt.Fprintf(out, "Campaign:   %s\n", sub.CampaignID)
		fmt.Fprintf(out, "Creator:    %s\n", sub.CreatorID)
		fmt.Fprintf(out, "Content:    %s %s\n", sub.Content.Kind, sub.Content.Ref)
		if sub.DurationSeconds > 0 {
			fmt.Fprintf(out, "Duration:   %ds\n", sub.DurationSeconds)
		} else {
			fmt.Fprintln(out, "Duration:   unknown")
		}
		fmt.Fprintf(out, "Created:    %s\n", sub.CreatedAt)
		fmt.Fprintf(out, "Updated:    %s\n", sub.UpdatedAt)

		fmt.Fprintln(out, "History:")
		if len(detail.History) == 0 {
			fmt.Fprintln(out, "  (none)")
			return nil
		}
		for _, record := range detail.History {
			printTransition(out, record)
		}
		return nil
	}),
}

var reviewHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a submission's transition history",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		submissionID, _ := cmd.Flags().GetString("id")
		records, err := svc.ListTransitions(ctx, submissionID)
		if err != nil {
			return errs.Wrap(err, "list transitions")
		}

		out := cmd.OutOrStdout()
		for _, record := range records {
			printTransition(out, record)
		}
		fmt.Fprintf(out, "%d transitions\n", len(records))
		return nil
	}),
}

func printTransition(out io.Writer, record ports.TransitionRecord) {
	fmt.Fprintf(out, "  t%d %s %s -> %s by %s (%s) at %s\n",
		record.TransitionID, record.Action, record.FromState, record.ToState,
		record.ActorID, record.ActorRole, record.CreatedAt)
	if text := record.Feedback.GeneralText; text != "" {
		fmt.Fprintf(out, "      feedback: %s\n", text)
	}
	for _, annotation := range record.Feedback.Annotations {
		fmt.Fprintf(out, "      @%ds %s\n", annotation.OffsetSeconds, annotation.Comment)
	}
	if record.Feedback.DueDate != "" {
		fmt.Fprintf(out, "      due: %s\n", record.Feedback.DueDate)
	}
	if record.SchedulingHint != "" {
		fmt.Fprintf(out, "      scheduling: %s\n", record.SchedulingHint)
	}
}

func init() {
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewShowCmd)
	reviewCmd.AddCommand(reviewHistoryCmd)

	reviewListCmd.Flags().String("state", "", "Optional state filter")
	reviewListCmd.Flags().String("campaign", "", "Optional campaign filter")
	reviewListCmd.Flags().String("creator", "", "Optional creator filter")

	reviewShowCmd.Flags().String("id", "", "Submission id")
	_ = reviewShowCmd.MarkFlagRequired("id")

	reviewHistoryCmd.Flags().String("id", "", "Submission id")
	_ = reviewHistoryCmd.MarkFlagRequired("id")
}
