package permission

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"reeldesk/internal/domain/review"
	"reeldesk/internal/errs"
	"reeldesk/internal/ports"
)

// StaticGate is a capability matrix loaded once at startup. It answers the
// coarse "may this role ever do this" question; workflow-state legality is
// the transition table's job, not the gate's.
type StaticGate struct {
	allowed     map[review.Role]map[review.Action]struct{}
	deniedActor map[string]map[string]struct{}
}

var _ ports.PermissionGate = (*StaticGate)(nil)

type matrixFile struct {
	Version int                 `toml:"version"`
	Roles   map[string][]string `toml:"roles"`

	// Deny lists per-actor action denials; "*" denies every action.
	Deny map[string][]string `toml:"deny"`
}

// NewDefaultGate grants each role exactly the actions the transition table
// can ever ask of it.
func NewDefaultGate() *StaticGate {
	allowed := make(map[review.Role]map[review.Action]struct{})
	for role, actions := range review.CapabilitySurface() {
		set := make(map[review.Action]struct{}, len(actions))
		for _, act := range actions {
			set[act] = struct{}{}
		}
		allowed[role] = set
	}
	return &StaticGate{allowed: allowed}
}

// LoadTOMLGate reads a permissions.toml capability matrix. Unknown roles or
// actions in the file are configuration mistakes and fail the load.
func LoadTOMLGate(path string) (*StaticGate, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("permissions file path is required")
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, errs.Wrapf(err, "read permissions file %q", trimmed)
	}

	var file matrixFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, errs.Wrapf(err, "parse permissions file %q", trimmed)
	}

	allowed := make(map[review.Role]map[review.Action]struct{}, len(file.Roles))
	for rawRole, rawActions := range file.Roles {
		role, err := review.ParseRole(rawRole)
		if err != nil {
			return nil, errs.Wrapf(err, "permissions file %q", trimmed)
		}
		set := make(map[review.Action]struct{}, len(rawActions))
		for _, rawAction := range rawActions {
			act, err := review.ParseAction(rawAction)
			if err != nil {
				return nil, errs.Wrapf(err, "permissions file %q role %s", trimmed, role)
			}
			set[act] = struct{}{}
		}
		allowed[role] = set
	}

	var deniedActor map[string]map[string]struct{}
	if len(file.Deny) > 0 {
		deniedActor = make(map[string]map[string]struct{}, len(file.Deny))
		for actorID, rawActions := range file.Deny {
			set := make(map[string]struct{}, len(rawActions))
			for _, rawAction := range rawActions {
				entry := strings.TrimSpace(rawAction)
				if entry == "" {
					continue
				}
				if entry != "*" {
					act, err := review.ParseAction(entry)
					if err != nil {
						return nil, errs.Wrapf(err, "permissions file %q deny %s", trimmed, actorID)
					}
					entry = string(act)
				}
				set[entry] = struct{}{}
			}
			deniedActor[strings.TrimSpace(actorID)] = set
		}
	}

	return &StaticGate{allowed: allowed, deniedActor: deniedActor}, nil
}

func (g *StaticGate) Check(ctx context.Context, actorID string, role review.Role, action review.Action) (bool, error) {
	if ctx == nil {
		return false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return false, errs.Wrap(err, "check context")
	}

	action = review.NormalizeAction(action)

	if denied, ok := g.deniedActor[strings.TrimSpace(actorID)]; ok {
		if _, all := denied["*"]; all {
			return false, nil
		}
		if _, hit := denied[string(action)]; hit {
			return false, nil
		}
	}

	actions, ok := g.allowed[role]
	if !ok {
		return false, nil
	}
	_, granted := actions[action]
	return granted, nil
}
