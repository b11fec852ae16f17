package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reeldesk/internal/bootstrap"
	"reeldesk/internal/bootstrap/logging"
	"reeldesk/internal/errs"
	"reeldesk/internal/usecase/review"
)

var reviewApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a review action to one submission",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		submissionID, _ := cmd.Flags().GetString("id")
		actorID, _ := cmd.Flags().GetString("actor")
		role, _ := cmd.Flags().GetString("role")
		action, _ := cmd.Flags().GetString("action")
		feedbackText, _ := cmd.Flags().GetString("feedback")
		annotateFlags, _ := cmd.Flags().GetStringArray("annotate")
		dueDate, _ := cmd.Flags().GetString("due")
		publishAt, _ := cmd.Flags().GetString("publish-at")

		annotations, err := parseAnnotationFlags(annotateFlags)
		if err != nil {
			return errs.Wrap(err, "parse annotations")
		}

		schedulingHint := ""
		if strings.TrimSpace(publishAt) != "" {
			schedulingHint = "publish_at=" + strings.TrimSpace(publishAt)
		}

		result, err := svc.ApplyAction(ctx, review.ApplyActionInput{
			SubmissionID: submissionID,
			ActorID:      actorID,
			ActorRole:    role,
			Action:       action,
			Feedback: review.FeedbackInput{
				GeneralText: feedbackText,
				Annotations: annotations,
				DueDate:     dueDate,
			},
			SchedulingHint: schedulingHint,
		})
		if err != nil {
			logging.Error(ctx, "apply review action failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "apply review action")
		}

		logging.Info(ctx, "review action applied",
			slog.String("submission_id", result.SubmissionID),
			slog.String("action", string(result.Record.Action)),
			slog.String("new_state", string(result.NewState)),
			slog.Int64("new_version", result.NewVersion),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s (version %d)\n",
			result.SubmissionID, result.Record.FromState, result.NewState, result.NewVersion); err != nil {
			return errs.Wrap(err, "write apply output")
		}
		return nil
	}),
}

// parseAnnotationFlags parses repeated --annotate values of the form
// "offset:comment", offset in seconds.
func parseAnnotationFlags(values []string) ([]review.AnnotationInput, error) {
	if len(values) == 0 {
		return nil, nil
	}

	annotations := make([]review.AnnotationInput, 0, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(value)
		if raw == "" {
			continue
		}
		offsetPart, comment, found := strings.Cut(raw, ":")
		if !found {
			return nil, fmt.Errorf("annotation %q must be offset:comment", value)
		}
		offset, err := strconv.Atoi(strings.TrimSpace(offsetPart))
		if err != nil {
			return nil, fmt.Errorf("annotation %q has a non-numeric offset", value)
		}
		annotations = append(annotations, review.AnnotationInput{
			OffsetSeconds: offset,
			Comment:       strings.TrimSpace(comment),
		})
	}
	return annotations, nil
}

func init() {
	reviewCmd.AddCommand(reviewApplyCmd)

	reviewApplyCmd.Flags().String("id", "", "Submission id")
	reviewApplyCmd.Flags().String("actor", "", "Actor id performing the action")
	reviewApplyCmd.Flags().String("role", "", "Actor role (creator|admin|client)")
	reviewApplyCmd.Flags().String("action", "", "Review action to apply")
	reviewApplyCmd.Flags().String("feedback", "", "General feedback text")
	reviewApplyCmd.Flags().StringArray("annotate", nil, "Timestamped annotation offset:comment (repeatable)")
	reviewApplyCmd.Flags().String("due", "", "Advisory revision due date (RFC3339)")
	reviewApplyCmd.Flags().String("publish-at", "", "Desired publish time passed along on approval (RFC3339)")
	_ = reviewApplyCmd.MarkFlagRequired("id")
	_ = reviewApplyCmd.MarkFlagRequired("actor")
	_ = reviewApplyCmd.MarkFlagRequired("role")
	_ = reviewApplyCmd.MarkFlagRequired("action")
}
