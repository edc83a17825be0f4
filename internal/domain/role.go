package domain

// Role is a user's standing within one project room. It is resolved from the
// persisted collaborator relation on every join and never cached across
// reconnects.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCollaborator Role = "collaborator"
	RoleViewer       Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleCollaborator, RoleViewer:
		return true
	}
	return false
}
