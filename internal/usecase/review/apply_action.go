package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
)

// ApplyAction validates and commits one review transition. Preconditions run
// in order: coarse capability, transition table legality, feedback demand.
// The state change, version bump, and history row commit atomically; the
// caller's read version guards the write, so a concurrent commit surfaces as
// domainreview.ErrVersionConflict and must be re-decided against fresh state,
// never blindly retried.
func (s *Service) ApplyAction(ctx context.Context, input ApplyActionInput) (ApplyActionResult, error) {
	if ctx == nil {
		return ApplyActionResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return ApplyActionResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return ApplyActionResult{}, errors.New("submission repository is required")
	}
	if s.uow == nil {
		return ApplyActionResult{}, errors.New("unit of work is required")
	}
	if s.gate == nil {
		return ApplyActionResult{}, errors.New("permission gate is required")
	}

	submissionID := strings.TrimSpace(input.SubmissionID)
	if submissionID == "" {
		return ApplyActionResult{}, errSubmissionIDRequired
	}
	actorID := strings.TrimSpace(input.ActorID)
	if actorID == "" {
		return ApplyActionResult{}, errActorRequired
	}
	role, err := domainreview.ParseRole(strings.TrimSpace(input.ActorRole))
	if err != nil {
		return ApplyActionResult{}, err
	}
	action, err := domainreview.ParseAction(strings.TrimSpace(input.Action))
	if err != nil {
		return ApplyActionResult{}, err
	}

	granted, err := s.gate.Check(ctx, actorID, role, action)
	if err != nil {
		return ApplyActionResult{}, errs.Wrap(err, "check permission")
	}
	if !granted {
		return ApplyActionResult{}, fmt.Errorf("%w: actor=%s role=%s action=%s",
			domainreview.ErrPermissionDenied, actorID, role, action)
	}

	now := nowUTCString()
	var result ApplyActionResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		submission, err := s.repo.GetSubmission(txCtx, submissionID)
		if err != nil {
			return err
		}

		rule, err := domainreview.Lookup(submission.State, role, action)
		if err != nil {
			return err
		}

		feedback, err := assembleFeedback(input.Feedback, submission.DurationSeconds)
		if err != nil {
			return err
		}
		if err := domainreview.CheckFeedback(rule, feedback); err != nil {
			return err
		}

		record := ports.TransitionRecord{
			SubmissionID:   submission.SubmissionID,
			FromState:      submission.State,
			ToState:        rule.To,
			Action:         action,
			ActorID:        actorID,
			ActorRole:      role,
			Feedback:       feedback,
			SchedulingHint: strings.TrimSpace(input.SchedulingHint),
			CreatedAt:      now,
		}
		if err := s.repo.CommitTransition(txCtx, submission.Version, record); err != nil {
			return err
		}

		result = ApplyActionResult{
			SubmissionID: submission.SubmissionID,
			NewState:     rule.To,
			NewVersion:   submission.Version + 1,
			Record:       record,
		}
		return nil
	}); err != nil {
		return ApplyActionResult{}, err
	}

	s.setCacheBestEffort(ctx, cacheSubmissionStateKey(result.SubmissionID), string(result.NewState))
	s.notifyCommitted(ctx, result.Record)
	return result, nil
}
