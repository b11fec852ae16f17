package review

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"reeldesk/internal/bootstrap/logging"
	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
)

// GetSubmission returns the submission with its full audit history,
// oldest transition first. The invariant version == committed transition
// count is checked against the repository's count and logged on drift,
// which would indicate the audit log was tampered with or partially lost.
func (s *Service) GetSubmission(ctx context.Context, submissionID string) (SubmissionDetail, error) {
	if ctx == nil {
		return SubmissionDetail{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return SubmissionDetail{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return SubmissionDetail{}, errors.New("submission repository is required")
	}

	id := strings.TrimSpace(submissionID)
	if id == "" {
		return SubmissionDetail{}, errSubmissionIDRequired
	}

	submission, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	history, err := s.repo.ListTransitions(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	count, err := s.repo.CountTransitions(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	if count != submission.Version {
		logging.Warn(ctx, "audit history drift",
			slog.String("submission_id", id),
			slog.Int64("version", submission.Version),
			slog.Int64("transitions", count),
		)
	}

	return SubmissionDetail{
		Submission: submission,
		History:    history,
	}, nil
}

// ListSubmissions returns submissions matching the filter for queue views.
func (s *Service) ListSubmissions(ctx context.Context, input ListSubmissionsInput) ([]ports.Submission, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("submission repository is required")
	}

	filter := ports.SubmissionFilter{
		CampaignID: strings.TrimSpace(input.CampaignID),
		CreatorID:  strings.TrimSpace(input.CreatorID),
	}
	if raw := strings.TrimSpace(input.State); raw != "" {
		state, err := domainreview.ParseState(raw)
		if err != nil {
			return nil, err
		}
		filter.States = []domainreview.State{state}
	}

	return s.repo.ListSubmissions(ctx, filter)
}

// ListTransitions returns a submission's history without the submission row.
func (s *Service) ListTransitions(ctx context.Context, submissionID string) ([]ports.TransitionRecord, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return nil, errors.New("submission repository is required")
	}

	id := strings.TrimSpace(submissionID)
	if id == "" {
		return nil, errSubmissionIDRequired
	}

	if _, err := s.repo.GetSubmission(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTransitions(ctx, id)
}
