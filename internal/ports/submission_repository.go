package ports

import (
	"context"
	"errors"

	"reeldesk/internal/domain/review"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// ContentKind distinguishes hosted-URL submissions from stored-file ones.
type ContentKind string

const (
	ContentKindURL  ContentKind = "url"
	ContentKindFile ContentKind = "file"
)

// ContentRef is opaque to the review core; only presentation layers resolve it.
type ContentRef struct {
	Kind ContentKind
	Ref  string
}

type Submission struct {
	SubmissionID string
	CampaignID   string
	CreatorID    string
	Content      ContentRef

	// DurationSeconds is zero when the video duration is not known yet.
	DurationSeconds int

	State     review.State
	Version   int64
	CreatedAt string
	UpdatedAt string
}

// TransitionRecord is one committed entry of a submission's append-only history.
type TransitionRecord struct {
	TransitionID uint64
	SubmissionID string
	FromState    review.State
	ToState      review.State
	Action       review.Action
	ActorID      string
	ActorRole    review.Role
	Feedback     review.Feedback

	// SchedulingHint is passthrough metadata for scheduling collaborators
	// (for example a common future publication time). Never interpreted here.
	SchedulingHint string

	CreatedAt string
}

type SubmissionFilter struct {
	States     []review.State
	CampaignID string
	CreatorID  string
}

type SubmissionReadRepository interface {
	GetSubmission(ctx context.Context, submissionID string) (Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
	ListTransitions(ctx context.Context, submissionID string) ([]TransitionRecord, error)
	CountTransitions(ctx context.Context, submissionID string) (int64, error)
}

type SubmissionRepository interface {
	SubmissionReadRepository
	CreateSubmission(ctx context.Context, submission Submission) (Submission, error)

	// CommitTransition atomically advances the submission to record.ToState,
	// bumps version from expectedVersion to expectedVersion+1, and appends the
	// history row. A version mismatch yields review.ErrVersionConflict and
	// writes nothing.
	CommitTransition(ctx context.Context, expectedVersion int64, record TransitionRecord) error
}
