package auth

// Role define los roles soportados en la clínica.
type Role string

const (
	RoleOwner Role = "owner"
	RoleVet   Role = "vet"
	RoleAdmin Role = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// IsStaff: vet o admin. Los handlers lo usan para rutas de atención.
func (c Claims) IsStaff() bool {
	return c.Role == RoleVet || c.Role == RoleAdmin
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
