package review

import (
	"context"
	"errors"
	"testing"

	domainreview "reeldesk/internal/domain/review"
)

func TestBulkActionIsolatesFailures(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, createTestSubmission(t, svc, ctx).SubmissionID)
	}

	// id #3 is already terminal before the batch runs.
	mustApply(t, svc, ctx, ApplyActionInput{
		SubmissionID: ids[2],
		ActorID:      "admin-7",
		ActorRole:    "admin",
		Action:       "approve_direct",
	})

	result, err := svc.ApplyBulkAction(ctx, BulkActionInput{
		SubmissionIDs: ids,
		ActorID:       "admin-7",
		ActorRole:     "admin",
		Action:        "send_to_client",
	})
	if err != nil {
		t.Fatalf("ApplyBulkAction() error = %v", err)
	}
	if len(result.Items) != 5 {
		t.Fatalf("items len = %d", len(result.Items))
	}

	successes := 0
	for id, item := range result.Items {
		if id == ids[2] {
			if !errors.Is(item.Err, domainreview.ErrIllegalTransition) {
				t.Fatalf("terminal id error = %v, want ErrIllegalTransition", item.Err)
			}
			continue
		}
		if item.Err != nil {
			t.Fatalf("id %s error = %v", id, item.Err)
		}
		if item.Result.NewState != domainreview.StatePendingClientReview {
			t.Fatalf("id %s state = %s", id, item.Result.NewState)
		}
		successes++
	}
	if successes != 4 {
		t.Fatalf("successes = %d", successes)
	}
}

func TestBulkActionSecondRunFailsDeterministically(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	sub := createTestSubmission(t, svc, ctx)

	input := BulkActionInput{
		SubmissionIDs: []string{sub.SubmissionID},
		ActorID:       "admin-7",
		ActorRole:     "admin",
		Action:        "approve_direct",
	}

	first, err := svc.ApplyBulkAction(ctx, input)
	if err != nil {
		t.Fatalf("ApplyBulkAction() error = %v", err)
	}
	if first.Items[sub.SubmissionID].Err != nil {
		t.Fatalf("first run error = %v", first.Items[sub.SubmissionID].Err)
	}

	// Terminal now: the rerun must fail per id, never report a silent no-op.
	second, err := svc.ApplyBulkAction(ctx, input)
	if err != nil {
		t.Fatalf("ApplyBulkAction() error = %v", err)
	}
	if !errors.Is(second.Items[sub.SubmissionID].Err, domainreview.ErrIllegalTransition) {
		t.Fatalf("second run error = %v, want ErrIllegalTransition", second.Items[sub.SubmissionID].Err)
	}
}

func TestBulkActionDeduplicatesIDs(t *testing.T) {
	svc, notifier := setupService(t)
	ctx := context.Background()
	sub := createTestSubmission(t, svc, ctx)

	result, err := svc.ApplyBulkAction(ctx, BulkActionInput{
		SubmissionIDs: []string{sub.SubmissionID, " " + sub.SubmissionID + " ", sub.SubmissionID},
		ActorID:       "admin-7",
		ActorRole:     "admin",
		Action:        "send_to_client",
	})
	if err != nil {
		t.Fatalf("ApplyBulkAction() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("items len = %d, duplicates must collapse", len(result.Items))
	}
	if item := result.Items[sub.SubmissionID]; item.Err != nil {
		t.Fatalf("item error = %v", item.Err)
	}
	if notifier.count() != 1 {
		t.Fatalf("one transition, one emission; got %d", notifier.count())
	}
}

func TestBulkActionSharesFeedbackAcrossItems(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first := createTestSubmission(t, svc, ctx)
	second := createTestSubmission(t, svc, ctx)

	result, err := svc.ApplyBulkAction(ctx, BulkActionInput{
		SubmissionIDs: []string{first.SubmissionID, second.SubmissionID},
		ActorID:       "admin-7",
		ActorRole:     "admin",
		Action:        "request_revision",
		Feedback: FeedbackInput{
			GeneralText: "brand colors are off",
			Annotations: []AnnotationInput{{OffsetSeconds: 12, Comment: "wrong logo"}},
		},
		SchedulingHint: "publish_at=2026-10-01T08:00:00Z",
	})
	if err != nil {
		t.Fatalf("ApplyBulkAction() error = %v", err)
	}

	for _, id := range []string{first.SubmissionID, second.SubmissionID} {
		item := result.Items[id]
		if item.Err != nil {
			t.Fatalf("id %s error = %v", id, item.Err)
		}
		if item.Result.NewState != domainreview.StateNeedsRevision {
			t.Fatalf("id %s state = %s", id, item.Result.NewState)
		}
		records, err := svc.ListTransitions(ctx, id)
		if err != nil {
			t.Fatalf("ListTransitions() error = %v", err)
		}
		if len(records) != 1 || records[0].Feedback.GeneralText != "brand colors are off" {
			t.Fatalf("id %s records = %#v", id, records)
		}
		if records[0].SchedulingHint != "publish_at=2026-10-01T08:00:00Z" {
			t.Fatalf("id %s scheduling hint = %q", id, records[0].SchedulingHint)
		}
	}
}

func TestBulkActionRequiresIDs(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.ApplyBulkAction(context.Background(), BulkActionInput{
		ActorID:   "admin-7",
		ActorRole: "admin",
		Action:    "approve_direct",
	}); err == nil {
		t.Fatalf("ApplyBulkAction() expected error for empty id list")
	}
}
