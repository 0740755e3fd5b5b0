package model

type Group struct {
	ID     string `json:"id"`
	Name   string `json:"name" validate:"required"`
	TeamID string `json:"team_id"`
}

type GroupUser struct {
	ID      string `json:"id"`
	TeamID  string `json:"team_id"`
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

// GroupInfo pairs a group with the abilities computed for the requesting actor.
type GroupInfo struct {
	Group     *Group     `json:"group"`
	Abilities AbilitySet `json:"abilities"`
}

// GroupMembers is the memberships response: matched users plus their raw
// membership records.
type GroupMembers struct {
	Users       []*User      `json:"users"`
	Memberships []*GroupUser `json:"group_users"`
}
