package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/ports"
	"reeldesk/internal/usecase/review"
)

type stubReviewActionService struct {
	applyInput review.ApplyActionInput
	applyErr   error
	bulkInput  review.BulkActionInput
	bulkItems  map[string]review.BulkItemResult
}

func (s *stubReviewActionService) ApplyAction(_ context.Context, input review.ApplyActionInput) (review.ApplyActionResult, error) {
	s.applyInput = input
	if s.applyErr != nil {
		return review.ApplyActionResult{}, s.applyErr
	}
	return review.ApplyActionResult{
		SubmissionID: input.SubmissionID,
		NewState:     domainreview.StatePendingClientReview,
		NewVersion:   1,
	}, nil
}

func (s *stubReviewActionService) ApplyBulkAction(_ context.Context, input review.BulkActionInput) (review.BulkActionResult, error) {
	s.bulkInput = input
	return review.BulkActionResult{Items: s.bulkItems}, nil
}

func postActionJSON(t *testing.T, handler http.Handler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestReviewActionHandlerApplies(t *testing.T) {
	t.Parallel()

	svc := &stubReviewActionService{}
	handler := newReviewActionHandler(svc)

	resp := postActionJSON(t, handler, "/v1/actions", `{
		"submission_id": "sub-1",
		"actor_id": "admin-7",
		"actor_role": "admin",
		"action": "send_to_client",
		"feedback": {"general_text": "looks good", "annotations": [{"offset_seconds": 12, "comment": "check logo"}]},
		"scheduling_hint": "publish_at=2026-10-01T08:00:00Z"
	}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", resp.Code, resp.Body.String())
	}
	if svc.applyInput.SubmissionID != "sub-1" || svc.applyInput.Action != "send_to_client" {
		t.Fatalf("service input = %+v", svc.applyInput)
	}
	if len(svc.applyInput.Feedback.Annotations) != 1 || svc.applyInput.Feedback.Annotations[0].OffsetSeconds != 12 {
		t.Fatalf("annotations = %+v", svc.applyInput.Feedback.Annotations)
	}
	if svc.applyInput.SchedulingHint != "publish_at=2026-10-01T08:00:00Z" {
		t.Fatalf("scheduling hint = %q", svc.applyInput.SchedulingHint)
	}

	var body actionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.NewState != "pending_client_review" || body.NewVersion != 1 {
		t.Fatalf("response = %+v", body)
	}
}

func TestReviewActionHandlerErrorStatuses(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "permission denied", err: domainreview.ErrPermissionDenied, want: http.StatusForbidden},
		{name: "version conflict", err: fmt.Errorf("wrapped: %w", domainreview.ErrVersionConflict), want: http.StatusConflict},
		{name: "feedback required", err: domainreview.ErrFeedbackRequired, want: http.StatusUnprocessableEntity},
		{name: "illegal transition", err: domainreview.ErrIllegalTransition, want: http.StatusUnprocessableEntity},
		{name: "malformed due date", err: domainreview.ErrDueDateInvalid, want: http.StatusUnprocessableEntity},
		{name: "not found", err: ports.ErrSubmissionNotFound, want: http.StatusNotFound},
		{name: "unknown action", err: domainreview.ErrUnknownAction, want: http.StatusBadRequest},
		{name: "plumbing failure", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := &stubReviewActionService{applyErr: testCase.err}
			handler := newReviewActionHandler(svc)

			resp := postActionJSON(t, handler, "/v1/actions", `{
				"submission_id": "sub-1",
				"actor_id": "admin-7",
				"actor_role": "admin",
				"action": "reject"
			}`)
			if resp.Code != testCase.want {
				t.Fatalf("status = %d, want %d; body=%s", resp.Code, testCase.want, resp.Body.String())
			}
		})
	}
}

func TestReviewActionHandlerRejectsBadPayload(t *testing.T) {
	t.Parallel()

	handler := newReviewActionHandler(&stubReviewActionService{})

	resp := postActionJSON(t, handler, "/v1/actions", `{not json`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/actions", nil)
	getResp := httptest.NewRecorder()
	handler.ServeHTTP(getResp, req)
	if getResp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want %d", getResp.Code, http.StatusMethodNotAllowed)
	}
}

func TestReviewBulkHandlerReportsPerItemOutcomes(t *testing.T) {
	t.Parallel()

	svc := &stubReviewActionService{
		bulkItems: map[string]review.BulkItemResult{
			"sub-1": {Result: review.ApplyActionResult{
				SubmissionID: "sub-1",
				NewState:     domainreview.StateApproved,
				NewVersion:   2,
			}},
			"sub-2": {Err: fmt.Errorf("apply: %w", domainreview.ErrIllegalTransition)},
		},
	}
	handler := newReviewActionHandler(svc)

	resp := postActionJSON(t, handler, "/v1/actions/bulk", `{
		"submission_ids": ["sub-1", "sub-2"],
		"actor_id": "admin-7",
		"actor_role": "admin",
		"action": "approve_direct"
	}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", resp.Code, resp.Body.String())
	}
	if len(svc.bulkInput.SubmissionIDs) != 2 {
		t.Fatalf("bulk input ids = %v", svc.bulkInput.SubmissionIDs)
	}

	var body bulkActionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Items["sub-1"].NewState != "approved" || body.Items["sub-1"].NewVersion != 2 {
		t.Fatalf("sub-1 = %+v", body.Items["sub-1"])
	}
	if body.Items["sub-2"].Error == "" {
		t.Fatalf("sub-2 should carry its error, got %+v", body.Items["sub-2"])
	}
}

func TestParseAnnotationFlags(t *testing.T) {
	t.Parallel()

	annotations, err := parseAnnotationFlags([]string{"12:check logo", " 45 : color shift ", ""})
	if err != nil {
		t.Fatalf("parseAnnotationFlags() error = %v", err)
	}
	if len(annotations) != 2 {
		t.Fatalf("len = %d", len(annotations))
	}
	if annotations[0].OffsetSeconds != 12 || annotations[0].Comment != "check logo" {
		t.Fatalf("annotations[0] = %+v", annotations[0])
	}
	if annotations[1].OffsetSeconds != 45 || annotations[1].Comment != "color shift" {
		t.Fatalf("annotations[1] = %+v", annotations[1])
	}

	if _, err := parseAnnotationFlags([]string{"no separator"}); err == nil {
		t.Fatal("expected error for missing separator")
	}
	if _, err := parseAnnotationFlags([]string{"abc:comment"}); err == nil {
		t.Fatal("expected error for non-numeric offset")
	}
}
