package model

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TeamID  string `json:"team_id"`
	IsAdmin bool   `json:"is_admin"`
}
