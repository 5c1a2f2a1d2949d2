package identity

// Role is the permission level carried by a session.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RolePlayer || r == RoleAdmin
}
