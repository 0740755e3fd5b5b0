package policy

import (
	"github.com/yakoovad/groups-service/internal/model"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Mutates reports whether the action changes resource state.
func (a Action) Mutates() bool {
	return a != ActionRead
}

// Reason identifies which rule denied an action. Both map to the same outer
// Forbidden outcome; the distinction exists for logging.
type Reason string

const (
	ReasonTeamScope Reason = "team_scope"
	ReasonRole      Reason = "role"
)

type Denial struct {
	Action Action
	Reason Reason
}

func (d *Denial) Error() string {
	return "action " + string(d.Action) + " denied: " + string(d.Reason)
}

type rule struct {
	reason Reason
	denies func(actor *model.Actor, action Action, group *model.Group) bool
}

// Engine decides whether an actor may perform an action on a group. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	rules []rule
}

// NewEngine builds the engine with its rules in evaluation order. The
// team-scope rule must stay ahead of the role rule: a cross-team actor is
// denied for team scope even when it is an administrator.
func NewEngine() *Engine {
	return &Engine{
		rules: []rule{
			{
				reason: ReasonTeamScope,
				denies: func(actor *model.Actor, _ Action, group *model.Group) bool {
					return group != nil && group.TeamID != actor.TeamID
				},
			},
			{
				reason: ReasonRole,
				denies: func(actor *model.Actor, action Action, _ *model.Group) bool {
					return action.Mutates() && !actor.IsAdmin
				},
			},
		},
	}
}

// Authorize evaluates the rules short-circuit and returns the first denial,
// or nil when the action is allowed. The group is nil for create, which has
// no target resource yet.
func (e *Engine) Authorize(actor *model.Actor, action Action, group *model.Group) *Denial {
	for _, r := range e.rules {
		if r.denies(actor, action, group) {
			return &Denial{Action: action, Reason: r.reason}
		}
	}
	return nil
}

// Abilities derives the per-resource descriptor by probing the same rules
// that enforce access, so descriptor and enforcement cannot disagree.
func (e *Engine) Abilities(actor *model.Actor, group *model.Group) model.AbilitySet {
	abilities := make(model.AbilitySet, 3)
	for ability, action := range map[string]Action{
		model.AbilityRead:   ActionRead,
		model.AbilityUpdate: ActionUpdate,
		model.AbilityDelete: ActionDelete,
	} {
		abilities[ability] = e.Authorize(actor, action, group) == nil
	}
	return abilities
}
