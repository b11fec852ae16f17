package notify

import (
	"context"
	"errors"
	"log/slog"

	"reeldesk/internal/bootstrap/logging"
	"reeldesk/internal/ports"
)

// LogNotifier emits committed transitions as structured log records. It is
// the default dispatcher target for local runs; real deployments point the
// webhook notifier at the notification service instead.
type LogNotifier struct{}

var _ ports.TransitionNotifier = (*LogNotifier)(nil)

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) TransitionCommitted(ctx context.Context, record ports.TransitionRecord) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	attrs := []slog.Attr{
		slog.String("component", "notify.log"),
		slog.String("submission_id", record.SubmissionID),
		slog.String("from_state", string(record.FromState)),
		slog.String("to_state", string(record.ToState)),
		slog.String("action", string(record.Action)),
		slog.String("actor_id", record.ActorID),
		slog.String("actor_role", string(record.ActorRole)),
	}
	if !record.Feedback.IsEmpty() {
		attrs = append(attrs, slog.Int("annotations", len(record.Feedback.Annotations)))
	}
	if record.Feedback.DueDate != "" {
		attrs = append(attrs, slog.String("due_date", record.Feedback.DueDate))
	}
	if record.SchedulingHint != "" {
		attrs = append(attrs, slog.String("scheduling_hint", record.SchedulingHint))
	}

	logging.Info(ctx, "transition committed", attrs...)
	return nil
}
