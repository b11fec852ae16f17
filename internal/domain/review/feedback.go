package review

import (
	"fmt"
	"strings"
	"time"
)

// Annotation is a timestamped note against a point in the video.
type Annotation struct {
	OffsetSeconds int
	Comment       string
}

// Feedback is the structured payload attached to revision and rejection
// transitions. Values are treated as immutable once attached to a committed
// transition; WithAnnotation returns a copy rather than mutating in place.
type Feedback struct {
	GeneralText string
	Annotations []Annotation

	// DueDate is an advisory resubmission deadline (RFC3339, empty = none).
	// Validate rejects malformed values; the deadline itself is surfaced to
	// scheduling collaborators, never enforced here.
	DueDate string
}

// IsEmpty reports whether the feedback carries no reviewable content.
// A due date alone does not count as content.
func (f Feedback) IsEmpty() bool {
	return strings.TrimSpace(f.GeneralText) == "" && len(f.Annotations) == 0
}

// WithAnnotation returns a copy of f with the annotation inserted keeping
// ascending offset order. Equal offsets preserve insertion order.
// durationSeconds bounds the offset when known; zero means unknown duration.
func (f Feedback) WithAnnotation(offsetSeconds int, comment string, durationSeconds int) (Feedback, error) {
	if offsetSeconds < 0 {
		return Feedback{}, fmt.Errorf("%w: %d", ErrAnnotationOffsetNegative, offsetSeconds)
	}
	if durationSeconds > 0 && offsetSeconds > durationSeconds {
		return Feedback{}, fmt.Errorf("%w: offset=%d duration=%d", ErrAnnotationPastDuration, offsetSeconds, durationSeconds)
	}
	if strings.TrimSpace(comment) == "" {
		return Feedback{}, ErrAnnotationCommentMissing
	}

	insertAt := len(f.Annotations)
	for i, ann := range f.Annotations {
		if ann.OffsetSeconds > offsetSeconds {
			insertAt = i
			break
		}
	}

	next := make([]Annotation, 0, len(f.Annotations)+1)
	next = append(next, f.Annotations[:insertAt]...)
	next = append(next, Annotation{OffsetSeconds: offsetSeconds, Comment: comment})
	next = append(next, f.Annotations[insertAt:]...)

	out := f
	out.Annotations = next
	return out, nil
}

// Validate checks a caller-assembled feedback value: due date format,
// annotation bounds, and ascending offset order. durationSeconds of zero
// means unknown duration.
func (f Feedback) Validate(durationSeconds int) error {
	if f.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, f.DueDate); err != nil {
			return fmt.Errorf("%w: %q", ErrDueDateInvalid, f.DueDate)
		}
	}

	prev := -1
	for _, ann := range f.Annotations {
		if ann.OffsetSeconds < 0 {
			return fmt.Errorf("%w: %d", ErrAnnotationOffsetNegative, ann.OffsetSeconds)
		}
		if durationSeconds > 0 && ann.OffsetSeconds > durationSeconds {
			return fmt.Errorf("%w: offset=%d duration=%d", ErrAnnotationPastDuration, ann.OffsetSeconds, durationSeconds)
		}
		if strings.TrimSpace(ann.Comment) == "" {
			return ErrAnnotationCommentMissing
		}
		if ann.OffsetSeconds < prev {
			return fmt.Errorf("%w: offset=%d after offset=%d", ErrAnnotationsOutOfOrder, ann.OffsetSeconds, prev)
		}
		prev = ann.OffsetSeconds
	}
	return nil
}

// CheckFeedback enforces a rule's feedback demand before a transition commits.
func CheckFeedback(rule Rule, feedback Feedback) error {
	if rule.Feedback == FeedbackRequired && feedback.IsEmpty() {
		return ErrFeedbackRequired
	}
	return nil
}
