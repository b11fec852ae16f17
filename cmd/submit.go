package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"reeldesk/internal/bootstrap"
	"reeldesk/internal/bootstrap/logging"
	"reeldesk/internal/errs"
	"reeldesk/internal/usecase/review"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a creator video into the review workflow",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *review.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		campaignID, _ := cmd.Flags().GetString("campaign")
		creatorID, _ := cmd.Flags().GetString("creator")
		contentURL, _ := cmd.Flags().GetString("url")
		contentFile, _ := cmd.Flags().GetString("file")
		duration, _ := cmd.Flags().GetInt("duration")

		created, err := svc.CreateSubmission(ctx, review.CreateSubmissionInput{
			CampaignID:      campaignID,
			CreatorID:       creatorID,
			ContentURL:      contentURL,
			ContentFile:     contentFile,
			DurationSeconds: duration,
		})
		if err != nil {
			logging.Error(ctx, "create submission failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create submission")
		}

		logging.Info(ctx, "submission created",
			slog.String("submission_id", created.SubmissionID),
			slog.String("state", string(created.State)),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "submission %s created in %s\n", created.SubmissionID, created.State); err != nil {
			return errs.Wrap(err, "write submit output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().String("campaign", "", "Campaign id the video belongs to")
	submitCmd.Flags().String("creator", "", "Creator id submitting the video")
	submitCmd.Flags().String("url", "", "Video URL (mutually exclusive with --file)")
	submitCmd.Flags().String("file", "", "Video file reference (mutually exclusive with --url)")
	submitCmd.Flags().Int("duration", 0, "Video duration in seconds (0 when unknown)")
	_ = submitCmd.MarkFlagRequired("campaign")
	_ = submitCmd.MarkFlagRequired("creator")
}
