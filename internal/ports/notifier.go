package ports

import "context"

// TransitionNotifier is told about every committed transition, exactly once
// per commit. Delivery downstream is at-least-once and best-effort from the
// core's perspective: errors are logged by the caller, never propagated to
// the actor, and nothing is retried here.
type TransitionNotifier interface {
	TransitionCommitted(ctx context.Context, record TransitionRecord) error
}
