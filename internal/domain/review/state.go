package review

import "fmt"

// State is a submission's position in the review workflow.
type State string

const (
	StatePendingAdminReview  State = "pending_admin_review"
	StatePendingClientReview State = "pending_client_review"
	StateClientApproved      State = "client_approved"
	StateNeedsRevision       State = "needs_revision"
	StateApproved            State = "approved"
	StateRejected            State = "rejected"
)

// Role is the capacity an actor acts in, not their identity.
type Role string

const (
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
)

// Action is a review operation requested against a submission.
type Action string

const (
	ActionApproveDirect   Action = "approve_direct"
	ActionSendToClient    Action = "send_to_client"
	ActionReject          Action = "reject"
	ActionRequestRevision Action = "request_revision"
	ActionApprove         Action = "approve"
	ActionFinalApprove    Action = "final_approve"
	ActionResubmit        Action = "resubmit"
)

// actionRequestChanges is the legacy alias some callers still send.
const actionRequestChanges Action = "request_changes"

// FeedbackRule states what a transition demands of its feedback payload.
type FeedbackRule int

const (
	FeedbackNone FeedbackRule = iota
	FeedbackOptional
	FeedbackRequired
)

// Rule is one legal transition: target state plus feedback demand.
type Rule struct {
	To       State
	Feedback FeedbackRule
}

type transitionKey struct {
	From  State
	Actor Role
	Act   Action
}

// transitionTable enumerates every legal (state, role, action) triple.
// Terminal states have no entries, which makes them absorbing.
// request_revision is legal for admin and client from every non-terminal
// state and always demands feedback.
var transitionTable = map[transitionKey]Rule{
	{StatePendingAdminReview, RoleAdmin, ActionApproveDirect}:    {To: StateApproved, Feedback: FeedbackOptional},
	{StatePendingAdminReview, RoleAdmin, ActionSendToClient}:     {To: StatePendingClientReview, Feedback: FeedbackNone},
	{StatePendingAdminReview, RoleAdmin, ActionReject}:           {To: StateRejected, Feedback: FeedbackRequired},
	{StatePendingAdminReview, RoleAdmin, ActionRequestRevision}:  {To: StateNeedsRevision, Feedback: FeedbackRequired},
	{StatePendingAdminReview, RoleClient, ActionRequestRevision}: {To: StateNeedsRevision, Feedback: FeedbackRequired},

	{StatePendingClientReview, RoleClient, ActionApprove}:         {To: StateClientApproved, Feedback: FeedbackOptional},
	{StatePendingClientReview, RoleClient, ActionRequestRevision}: {To: StateNeedsRevision, Feedback: FeedbackRequired},
	{StatePendingClientReview, RoleAdmin, ActionRequestRevision}:  {To: StateNeedsRevision, Feedback: FeedbackRequired},

	{StateClientApproved, RoleAdmin, ActionFinalApprove}:     {To: StateApproved, Feedback: FeedbackOptional},
	{StateClientApproved, RoleAdmin, ActionRequestRevision}:  {To: StateNeedsRevision, Feedback: FeedbackRequired},
	{StateClientApproved, RoleClient, ActionRequestRevision}: {To: StateNeedsRevision, Feedback: FeedbackRequired},

	{StateNeedsRevision, RoleCreator, ActionResubmit}:       {To: StatePendingAdminReview, Feedback: FeedbackNone},
	{StateNeedsRevision, RoleAdmin, ActionRequestRevision}:  {To: StateNeedsRevision, Feedback: FeedbackRequired},
	{StateNeedsRevision, RoleClient, ActionRequestRevision}: {To: StateNeedsRevision, Feedback: FeedbackRequired},
}

// NormalizeAction maps legacy aliases onto canonical actions.
func NormalizeAction(act Action) Action {
	if act == actionRequestChanges {
		return ActionRequestRevision
	}
	return act
}

func ParseState(raw string) (State, error) {
	switch State(raw) {
	case StatePendingAdminReview, StatePendingClientReview, StateClientApproved,
		StateNeedsRevision, StateApproved, StateRejected:
		return State(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownState, raw)
}

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCreator, RoleAdmin, RoleClient:
		return Role(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
}

func ParseAction(raw string) (Action, error) {
	act := NormalizeAction(Action(raw))
	switch act {
	case ActionApproveDirect, ActionSendToClient, ActionReject,
		ActionRequestRevision, ActionApprove, ActionFinalApprove, ActionResubmit:
		return act, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
}

// Lookup returns the rule for a (state, role, action) triple, or
// ErrIllegalTransition when the table has no such entry.
func Lookup(from State, actor Role, act Action) (Rule, error) {
	rule, ok := transitionTable[transitionKey{From: from, Actor: actor, Act: NormalizeAction(act)}]
	if !ok {
		return Rule{}, fmt.Errorf("%w: state=%s role=%s action=%s", ErrIllegalTransition, from, actor, act)
	}
	return rule, nil
}

// IsTerminal reports whether a state accepts no further actions.
func IsTerminal(s State) bool {
	return s == StateApproved || s == StateRejected
}

// CapabilitySurface derives, per role, every action the transition table can
// ever ask of it. The default permission matrix is built from this.
func CapabilitySurface() map[Role][]Action {
	seen := make(map[Role]map[Action]struct{})
	for key := range transitionTable {
		if seen[key.Actor] == nil {
			seen[key.Actor] = make(map[Action]struct{})
		}
		seen[key.Actor][key.Act] = struct{}{}
	}

	out := make(map[Role][]Action, len(seen))
	for role, acts := range seen {
		list := make([]Action, 0, len(acts))
		for act := range acts {
			list = append(list, act)
		}
		out[role] = list
	}
	return out
}
