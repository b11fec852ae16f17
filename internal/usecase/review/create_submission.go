package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
)

var (
	errCampaignRequired     = errors.New("campaign id is required")
	errCreatorRequired      = errors.New("creator id is required")
	errContentRequired      = errors.New("exactly one of content url and content file is required")
	errNegativeDuration     = errors.New("duration must not be negative")
	errSubmissionIDRequired = errors.New("submission id is required")
	errActorRequired        = errors.New("actor id is required")
)

// CreateSubmission registers a creator's video and opens the review workflow
// at pending_admin_review with an empty history.
func (s *Service) CreateSubmission(ctx context.Context, input CreateSubmissionInput) (ports.Submission, error) {
	if ctx == nil {
		return ports.Submission{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ports.Submission{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ports.Submission{}, errors.New("submission repository is required")
	}

	campaignID := strings.TrimSpace(input.CampaignID)
	if campaignID == "" {
		return ports.Submission{}, errCampaignRequired
	}
	creatorID := strings.TrimSpace(input.CreatorID)
	if creatorID == "" {
		return ports.Submission{}, errCreatorRequired
	}

	contentURL := strings.TrimSpace(input.ContentURL)
	contentFile := strings.TrimSpace(input.ContentFile)
	if (contentURL == "") == (contentFile == "") {
		return ports.Submission{}, errContentRequired
	}
	content := ports.ContentRef{Kind: ports.ContentKindURL, Ref: contentURL}
	if contentFile != "" {
		content = ports.ContentRef{Kind: ports.ContentKindFile, Ref: contentFile}
	}

	if input.DurationSeconds < 0 {
		return ports.Submission{}, errNegativeDuration
	}

	now := nowUTCString()
	created, err := s.repo.CreateSubmission(ctx, ports.Submission{
		SubmissionID:    uuid.NewString(),
		CampaignID:      campaignID,
		CreatorID:       creatorID,
		Content:         content,
		DurationSeconds: input.DurationSeconds,
		State:           domainreview.StatePendingAdminReview,
		Version:         0,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return ports.Submission{}, err
	}

	s.setCacheBestEffort(ctx, cacheSubmissionStateKey(created.SubmissionID), string(created.State))
	return created, nil
}
