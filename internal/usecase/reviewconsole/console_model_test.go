package reviewconsole

import (
	"testing"

	domainreview "reeldesk/internal/domain/review"
	"reeldesk/internal/ports"
)

func TestApproveActionFor(t *testing.T) {
	testCases := []struct {
		name    string
		role    string
		state   domainreview.State
		want    domainreview.Action
		wantErr bool
	}{
		{
			name:  "admin at initial review",
			role:  "admin",
			state: domainreview.StatePendingAdminReview,
			want:  domainreview.ActionApproveDirect,
		},
		{
			name:  "client at client review",
			role:  "client",
			state: domainreview.StatePendingClientReview,
			want:  domainreview.ActionApprove,
		},
		{
			name:  "admin after client approval",
			role:  "admin",
			state: domainreview.StateClientApproved,
			want:  domainreview.ActionFinalApprove,
		},
		{
			name:    "creator cannot approve",
			role:    "creator",
			state:   domainreview.StatePendingAdminReview,
			wantErr: true,
		},
		{
			name:    "client at initial review",
			role:    "client",
			state:   domainreview.StatePendingAdminReview,
			wantErr: true,
		},
		{
			name:    "terminal state",
			role:    "admin",
			state:   domainreview.StateApproved,
			wantErr: true,
		},
		{
			name:    "unknown role",
			role:    "observer",
			state:   domainreview.StatePendingAdminReview,
			wantErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := approveActionFor(testCase.role, testCase.state)
			if testCase.wantErr {
				if err == nil {
					t.Fatalf("approveActionFor() expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("approveActionFor() error = %v", err)
			}
			if got != testCase.want {
				t.Fatalf("approveActionFor() = %s, want %s", got, testCase.want)
			}
		})
	}
}

func TestSortSubmissionsNewestFirst(t *testing.T) {
	items := []ports.Submission{
		{SubmissionID: "sub-b", UpdatedAt: "2026-03-01T10:00:00Z"},
		{SubmissionID: "sub-c", UpdatedAt: "2026-03-01T12:00:00Z"},
		{SubmissionID: "sub-a", UpdatedAt: "2026-03-01T10:00:00Z"},
	}

	sorted := sortSubmissions(items)
	if sorted[0].SubmissionID != "sub-c" {
		t.Fatalf("sorted[0] = %s, want sub-c", sorted[0].SubmissionID)
	}
	if sorted[1].SubmissionID != "sub-a" || sorted[2].SubmissionID != "sub-b" {
		t.Fatalf("tie order = %s, %s", sorted[1].SubmissionID, sorted[2].SubmissionID)
	}
	// Input slice is untouched.
	if items[0].SubmissionID != "sub-b" {
		t.Fatalf("input mutated: %s", items[0].SubmissionID)
	}
}

func TestNormalizeRoleDefaultsToAdmin(t *testing.T) {
	if got := normalizeRole(""); got != "admin" {
		t.Fatalf("normalizeRole(\"\") = %q", got)
	}
	if got := normalizeRole(" Client "); got != "client" {
		t.Fatalf("normalizeRole(Client) = %q", got)
	}
}
