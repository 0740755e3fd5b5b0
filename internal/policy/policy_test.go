package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/groups-service/internal/model"
)

func TestEngine_Authorize(t *testing.T) {
	engine := NewEngine()

	group := &model.Group{ID: "g1", Name: "backend", TeamID: "team-a"}

	sameTeamAdmin := &model.Actor{UserID: "u1", TeamID: "team-a", IsAdmin: true}
	sameTeamMember := &model.Actor{UserID: "u2", TeamID: "team-a", IsAdmin: false}
	crossTeamAdmin := &model.Actor{UserID: "u3", TeamID: "team-b", IsAdmin: true}
	crossTeamMember := &model.Actor{UserID: "u4", TeamID: "team-b", IsAdmin: false}

	tests := []struct {
		name           string
		actor          *model.Actor
		action         Action
		group          *model.Group
		expectedReason Reason
	}{
		{
			name:   "same-team admin can update",
			actor:  sameTeamAdmin,
			action: ActionUpdate,
			group:  group,
		},
		{
			name:   "same-team admin can delete",
			actor:  sameTeamAdmin,
			action: ActionDelete,
			group:  group,
		},
		{
			name:   "same-team member can read",
			actor:  sameTeamMember,
			action: ActionRead,
			group:  group,
		},
		{
			name:           "same-team member cannot update",
			actor:          sameTeamMember,
			action:         ActionUpdate,
			group:          group,
			expectedReason: ReasonRole,
		},
		{
			name:           "same-team member cannot delete",
			actor:          sameTeamMember,
			action:         ActionDelete,
			group:          group,
			expectedReason: ReasonRole,
		},
		{
			name:           "cross-team admin cannot read",
			actor:          crossTeamAdmin,
			action:         ActionRead,
			group:          group,
			expectedReason: ReasonTeamScope,
		},
		{
			name:           "cross-team admin cannot update",
			actor:          crossTeamAdmin,
			action:         ActionUpdate,
			group:          group,
			expectedReason: ReasonTeamScope,
		},
		{
			name:           "cross-team admin cannot delete",
			actor:          crossTeamAdmin,
			action:         ActionDelete,
			group:          group,
			expectedReason: ReasonTeamScope,
		},
		{
			// Team scope is evaluated first, so the denial reason is the
			// scope mismatch even though the role rule would also deny.
			name:           "cross-team member denied for team scope, not role",
			actor:          crossTeamMember,
			action:         ActionUpdate,
			group:          group,
			expectedReason: ReasonTeamScope,
		},
		{
			name:   "admin can create without a target group",
			actor:  sameTeamAdmin,
			action: ActionCreate,
			group:  nil,
		},
		{
			name:           "member cannot create",
			actor:          sameTeamMember,
			action:         ActionCreate,
			group:          nil,
			expectedReason: ReasonRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			denial := engine.Authorize(tt.actor, tt.action, tt.group)

			if tt.expectedReason == "" {
				assert.Nil(t, denial)
			} else {
				require.NotNil(t, denial)
				assert.Equal(t, tt.expectedReason, denial.Reason)
				assert.Equal(t, tt.action, denial.Action)
			}
		})
	}
}

func TestEngine_Abilities(t *testing.T) {
	engine := NewEngine()

	group := &model.Group{ID: "g1", Name: "backend", TeamID: "team-a"}

	tests := []struct {
		name     string
		actor    *model.Actor
		expected model.AbilitySet
	}{
		{
			name:  "same-team admin gets full abilities",
			actor: &model.Actor{UserID: "u1", TeamID: "team-a", IsAdmin: true},
			expected: model.AbilitySet{
				model.AbilityRead:   true,
				model.AbilityUpdate: true,
				model.AbilityDelete: true,
			},
		},
		{
			name:  "same-team member gets read only",
			actor: &model.Actor{UserID: "u2", TeamID: "team-a", IsAdmin: false},
			expected: model.AbilitySet{
				model.AbilityRead:   true,
				model.AbilityUpdate: false,
				model.AbilityDelete: false,
			},
		},
		{
			name:  "cross-team admin gets nothing",
			actor: &model.Actor{UserID: "u3", TeamID: "team-b", IsAdmin: true},
			expected: model.AbilitySet{
				model.AbilityRead:   false,
				model.AbilityUpdate: false,
				model.AbilityDelete: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abilities := engine.Abilities(tt.actor, group)
			assert.Equal(t, tt.expected, abilities)
			assert.Equal(t, tt.expected[model.AbilityRead], abilities.Can(model.AbilityRead))
		})
	}
}
