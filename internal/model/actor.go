package model

// Actor is the authenticated caller, rebuilt per request from a verified
// token. It is never persisted.
type Actor struct {
	UserID  string `json:"user_id"`
	TeamID  string `json:"team_id"`
	IsAdmin bool   `json:"is_admin"`
}
