package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
)

// WebhookNotifier POSTs each committed transition as JSON to the external
// notification dispatcher. Delivery is at-least-once downstream; this adapter
// makes exactly one attempt per commit and reports failure to the caller,
// which logs it without failing the transition.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

var _ ports.TransitionNotifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(url string, timeout time.Duration) (*WebhookNotifier, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, errors.New("webhook url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookNotifier{
		url:    trimmed,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type webhookAnnotation struct {
	OffsetSeconds int    `json:"offset_seconds"`
	Comment       string `json:"comment"`
}

type webhookFeedback struct {
	GeneralText string              `json:"general_text,omitempty"`
	Annotations []webhookAnnotation `json:"annotations,omitempty"`
	DueDate     string              `json:"due_date,omitempty"`
}

type webhookPayload struct {
	SubmissionID   string           `json:"submission_id"`
	FromState      string           `json:"from_state"`
	ToState        string           `json:"to_state"`
	Action         string           `json:"action"`
	ActorID        string           `json:"actor_id"`
	ActorRole      string           `json:"actor_role"`
	Feedback       *webhookFeedback `json:"feedback,omitempty"`
	SchedulingHint string           `json:"scheduling_hint,omitempty"`
	CommittedAt    string           `json:"committed_at"`
}

func (n *WebhookNotifier) TransitionCommitted(ctx context.Context, record ports.TransitionRecord) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	body, err := json.Marshal(buildWebhookPayload(record))
	if err != nil {
		return errs.Wrap(err, "encode transition payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errs.Wrap(err, "post transition webhook")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transition webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildWebhookPayload(record ports.TransitionRecord) webhookPayload {
	payload := webhookPayload{
		SubmissionID:   record.SubmissionID,
		FromState:      string(record.FromState),
		ToState:        string(record.ToState),
		Action:         string(record.Action),
		ActorID:        record.ActorID,
		ActorRole:      string(record.ActorRole),
		SchedulingHint: record.SchedulingHint,
		CommittedAt:    record.CreatedAt,
	}
	if !record.Feedback.IsEmpty() || record.Feedback.DueDate != "" {
		payload.Feedback = &webhookFeedback{
			GeneralText: record.Feedback.GeneralText,
			Annotations: webhookAnnotations(record.Feedback.Annotations),
			DueDate:     record.Feedback.DueDate,
		}
	}
	return payload
}

func webhookAnnotations(annotations []review.Annotation) []webhookAnnotation {
	if len(annotations) == 0 {
		return nil
	}
	out := make([]webhookAnnotation, 0, len(annotations))
	for _, ann := range annotations {
		out = append(out, webhookAnnotation{
			OffsetSeconds: ann.OffsetSeconds,
			Comment:       ann.Comment,
		})
	}
	return out
}
