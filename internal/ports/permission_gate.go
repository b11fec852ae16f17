package ports

import (
	"context"

	"reeldesk/internal/domain/review"
)

// PermissionGate answers the coarse capability question "may this actor ever
// perform this action", independent of any submission's workflow state.
// State-dependent legality stays in the transition table.
type PermissionGate interface {
	Check(ctx context.Context, actorID string, role review.Role, action review.Action) (bool, error)
}
