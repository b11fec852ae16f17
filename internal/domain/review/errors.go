package review

import "errors"

var (
	ErrPermissionDenied  = errors.New("actor lacks capability for this action")
	ErrIllegalTransition = errors.New("action is not legal from the current state for this role")
	ErrFeedbackRequired  = errors.New("action requires non-empty feedback")
	ErrVersionConflict   = errors.New("submission changed since it was read")

	ErrUnknownState  = errors.New("unknown submission state")
	ErrUnknownRole   = errors.New("unknown actor role")
	ErrUnknownAction = errors.New("unknown review action")

	ErrAnnotationOffsetNegative = errors.New("annotation offset must not be negative")
	ErrAnnotationPastDuration   = errors.New("annotation offset exceeds video duration")
	ErrAnnotationCommentMissing = errors.New("annotation comment is required")
	ErrAnnotationsOutOfOrder    = errors.New("annotations must be ordered by ascending offset")
	ErrDueDateInvalid           = errors.New("due date must be an RFC3339 timestamp")
)
