package cmd

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"reeldesk/internal/bootstrap"
	"reeldesk/internal/bootstrap/logging"
	"reeldesk/internal/errs"
	"reeldesk/internal/usecase/review"
)

var reviewBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Apply one review action to many submissions",
	Long:  "Applies the same action to every listed submission. Each submission succeeds or fails on its own; one bad id never aborts the rest.",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		idsFlag, _ := cmd.Flags().GetString("ids")
		actorID, _ := cmd.Flags().GetString("actor")
		role, _ := cmd.Flags().GetString("role")
		action, _ := cmd.Flags().GetString("action")
		feedbackText, _ := cmd.Flags().GetString("feedback")
		annotateFlags, _ := cmd.Flags().GetStringArray("annotate")
		dueDate, _ := cmd.Flags().GetString("due")

		annotations, err := parseAnnotationFlags(annotateFlags)
		if err != nil {
			return errs.Wrap(err, "parse annotations")
		}

		result, err := svc.ApplyBulkAction(ctx, review.BulkActionInput{
			SubmissionIDs: strings.Split(idsFlag, ","),
			ActorID:       actorID,
			ActorRole:     role,
			Action:        action,
			Feedback: review.FeedbackInput{
				GeneralText: feedbackText,
				Annotations: annotations,
				DueDate:     dueDate,
			},
		})
		if err != nil {
			logging.Error(ctx, "bulk review action failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "apply bulk review action")
		}

		ids := make([]string, 0, len(result.Items))
		for id := range result.Items {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		failures := 0
		for _, id := range ids {
			item := result.Items[id]
			if item.Err != nil {
				failures++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %v\n", id, item.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (version %d)\n", id, item.Result.NewState, item.Result.NewVersion)
		}

		logging.Info(ctx, "bulk review action finished",
			slog.String("action", action),
			slog.Int("total", len(ids)),
			slog.Int("failed", failures),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "%d applied, %d failed\n", len(ids)-failures, failures)
		return nil
	}),
}

func init() {
	reviewCmd.AddCommand(reviewBulkCmd)

	reviewBulkCmd.Flags().String("ids", "", "Comma-separated submission ids")
	reviewBulkCmd.Flags().String("actor", "", "Actor id performing the action")
	reviewBulkCmd.Flags().String("role", "", "Actor role (creator|admin|client)")
	reviewBulkCmd.Flags().String("action", "", "Review action to apply")
	reviewBulkCmd.Flags().String("feedback", "", "General feedback text shared by all items")
	reviewBulkCmd.Flags().StringArray("annotate", nil, "Timestamped annotation offset:comment (repeatable)")
	reviewBulkCmd.Flags().String("due", "", "Advisory revision due date (RFC3339)")
	_ = reviewBulkCmd.MarkFlagRequired("ids")
	_ = reviewBulkCmd.MarkFlagRequired("actor")
	_ = reviewBulkCmd.MarkFlagRequired("role")
	_ = reviewBulkCmd.MarkFlagRequired("action")
}
