package permission

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"reeldesk/internal/domain/review"
)

func writePermissionsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "permissions.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write permissions file: %v", err)
	}
	return path
}

func TestDefaultGateMatchesTransitionSurface(t *testing.T) {
	gate := NewDefaultGate()
	ctx := context.Background()

	granted, err := gate.Check(ctx, "admin-1", review.RoleAdmin, review.ActionReject)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !granted {
		t.Fatalf("admin should be able to reject")
	}

	granted, err = gate.Check(ctx, "client-1", review.RoleClient, review.ActionReject)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if granted {
		t.Fatalf("client must not be able to reject")
	}

	granted, err = gate.Check(ctx, "creator-1", review.RoleCreator, review.ActionResubmit)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !granted {
		t.Fatalf("creator should be able to resubmit")
	}
}

func TestLoadTOMLGate(t *testing.T) {
	path := writePermissionsFile(t, `
version = 1

[roles]
admin = ["send_to_client", "request_revision"]
client = ["approve", "request_changes"]
creator = ["resubmit"]

[deny]
"admin-suspended" = ["*"]
"client-limited" = ["request_changes"]
`)

	gate, err := LoadTOMLGate(path)
	if err != nil {
		t.Fatalf("LoadTOMLGate() error = %v", err)
	}
	ctx := context.Background()

	granted, err := gate.Check(ctx, "admin-1", review.RoleAdmin, review.ActionReject)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if granted {
		t.Fatalf("reject not listed for admin, must be denied")
	}

	// The alias resolves to the canonical action on both sides.
	granted, err = gate.Check(ctx, "client-1", review.RoleClient, review.ActionRequestRevision)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !granted {
		t.Fatalf("request_changes grant should cover request_revision")
	}

	granted, err = gate.Check(ctx, "admin-suspended", review.RoleAdmin, review.ActionSendToClient)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if granted {
		t.Fatalf("wildcard deny should block every action")
	}

	granted, err = gate.Check(ctx, "client-limited", review.RoleClient, review.ActionRequestRevision)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if granted {
		t.Fatalf("actor deny should block the denied action")
	}

	granted, err = gate.Check(ctx, "client-limited", review.RoleClient, review.ActionApprove)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !granted {
		t.Fatalf("actor deny must not block other actions")
	}
}

func TestLoadTOMLGateRejectsUnknownEntries(t *testing.T) {
	badRole := writePermissionsFile(t, "[roles]\nsuperuser = [\"approve\"]\n")
	if _, err := LoadTOMLGate(badRole); err == nil {
		t.Fatalf("LoadTOMLGate() expected error for unknown role")
	}

	badAction := writePermissionsFile(t, "[roles]\nadmin = [\"promote\"]\n")
	if _, err := LoadTOMLGate(badAction); err == nil {
		t.Fatalf("LoadTOMLGate() expected error for unknown action")
	}
}
