package auth

// Token abilities. Admins receive the wildcard; everyone else receives the
// owner-scoped set and the policy layer enforces ownership per resource.
const (
	AbilityAll = "*"

	AbilityOrderCreate = "order:create"
	AbilityOrderUpdate = "order:update"
	AbilityOrderDelete = "order:delete"
)

// AbilitiesFor returns the ability set embedded in a freshly minted token.
func AbilitiesFor(isAdmin bool) []string {
	if isAdmin {
		return []string{AbilityAll}
	}
	return []string{
		AbilityOrderCreate,
		AbilityOrderUpdate,
		AbilityOrderDelete,
	}
}
