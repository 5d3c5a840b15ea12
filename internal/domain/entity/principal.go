package entity

// Roles válidos.
const (
	RoleAdmin   = "admin"
	RoleAuditor = "auditor"
	RoleClient  = "client"
)

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAuditor || role == RoleClient
}

// Principal contexto de identidad del llamador, provisto por el colaborador de identidad (JWT).
// Se consume en modo solo lectura.
type Principal struct {
	UserID      string
	CompanyID   string
	Role        string
	LocationIDs []string // ubicaciones asignadas; ignorado para admin
}

// IsAdmin indica si el principal tiene visibilidad total.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
