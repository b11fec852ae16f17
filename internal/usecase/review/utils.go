package review

import (
	"strings"
	"time"

	domainreview "reeldesk/internal/domain/review"
)

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func cacheSubmissionStateKey(submissionID string) string {
	return "submission_state:" + submissionID
}

// dedupeIDs trims and deduplicates ids preserving first-occurrence order.
func dedupeIDs(in []string) []string {
	if len(in) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// assembleFeedback builds the domain feedback value from caller input,
// inserting annotations one by one so ordering and bounds are enforced on
// insert rather than trusted from the wire, then validates the assembled
// value as a whole (due date format included) before it can commit.
func assembleFeedback(input FeedbackInput, durationSeconds int) (domainreview.Feedback, error) {
	feedback := domainreview.Feedback{
		GeneralText: strings.TrimSpace(input.GeneralText),
		DueDate:     strings.TrimSpace(input.DueDate),
	}

	var err error
	for _, ann := range input.Annotations {
		feedback, err = feedback.WithAnnotation(ann.OffsetSeconds, strings.TrimSpace(ann.Comment), durationSeconds)
		if err != nil {
			return domainreview.Feedback{}, err
		}
	}

	if err := feedback.Validate(durationSeconds); err != nil {
		return domainreview.Feedback{}, err
	}
	return feedback, nil
}
