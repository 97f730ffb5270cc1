package policy

import "github.com/google/uuid"

// Action enumerates the order operations subject to access control.
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the authenticated principal derived from the access token.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Allows decides whether the actor may perform the action on a resource
// owned by ownerID. List and create are open to any authenticated actor;
// everything else requires ownership or the admin role.
func Allows(actor Actor, action Action, ownerID uuid.UUID) bool {
	if actor.UserID == uuid.Nil {
		return false
	}

	switch action {
	case ActionList, ActionCreate:
		return true
	case ActionView, ActionUpdate, ActionDelete:
		return actor.IsAdmin || actor.UserID == ownerID
	default:
		return false
	}
}
