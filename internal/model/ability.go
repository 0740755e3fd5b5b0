package model

const (
	AbilityRead   = "read"
	AbilityUpdate = "update"
	AbilityDelete = "delete"
)

// AbilitySet maps an ability name to whether the actor holds it on a resource.
// Computed fresh per (actor, resource) pair, never persisted or cached.
type AbilitySet map[string]bool

func (a AbilitySet) Can(ability string) bool {
	return a[ability]
}
