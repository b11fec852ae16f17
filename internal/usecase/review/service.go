package review

import (
	"context"
	"log/slog"

	"reeldesk/internal/bootstrap/logging"
	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
)

const defaultBulkWorkers = 4

type Service struct {
	repo     ports.SubmissionRepository
	uow      ports.UnitOfWork
	gate     ports.PermissionGate
	notifier ports.TransitionNotifier
	cache    ports.Cache

	bulkWorkers int
}

// NewService wires review usecases with their ports. notifier and cache are
// optional; a nil notifier means transitions commit silently.
func NewService(
	repo ports.SubmissionRepository,
	uow ports.UnitOfWork,
	gate ports.PermissionGate,
	notifier ports.TransitionNotifier,
	cache ports.Cache,
) *Service {
	return &Service{
		repo:        repo,
		uow:         uow,
		gate:        gate,
		notifier:    notifier,
		cache:       cache,
		bulkWorkers: defaultBulkWorkers,
	}
}

type CreateSubmissionInput struct {
	CampaignID string
	CreatorID  string

	// Exactly one of ContentURL and ContentFile must be set.
	ContentURL  string
	ContentFile string

	// DurationSeconds of zero means the duration is not known yet.
	DurationSeconds int
}

type AnnotationInput struct {
	OffsetSeconds int
	Comment       string
}

type FeedbackInput struct {
	GeneralText string
	Annotations []AnnotationInput
	DueDate     string
}

type ApplyActionInput struct {
	SubmissionID   string
	ActorID        string
	ActorRole      string
	Action         string
	Feedback       FeedbackInput
	SchedulingHint string
}

type ApplyActionResult struct {
	SubmissionID string
	NewState     domainreview.State
	NewVersion   int64
	Record       ports.TransitionRecord
}

type BulkActionInput struct {
	SubmissionIDs  []string
	ActorID        string
	ActorRole      string
	Action         string
	Feedback       FeedbackInput
	SchedulingHint string
}

// BulkItemResult is one submission's independent outcome: Err nil means the
// transition committed and Result is populated.
type BulkItemResult struct {
	Result ApplyActionResult
	Err    error
}

type BulkActionResult struct {
	// Items is keyed by submission id, one entry per deduplicated input id.
	Items map[string]BulkItemResult
}

type SubmissionDetail struct {
	Submission ports.Submission
	History    []ports.TransitionRecord
}

type ListSubmissionsInput struct {
	State      string
	CampaignID string
	CreatorID  string
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}

// notifyCommitted emits the transition event toward the dispatcher. Failures
// are logged and swallowed: the transition already committed and the actor's
// call must not fail over notification plumbing.
func (s *Service) notifyCommitted(ctx context.Context, record ports.TransitionRecord) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TransitionCommitted(ctx, record); err != nil {
		logging.Warn(ctx, "transition notification failed",
			slog.String("submission_id", record.SubmissionID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
