package domain

// Role enumerates operator privileges on the API.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// Operator is a configured API account.
type Operator struct {
	Email        string
	PasswordHash string
	Role         Role
}
