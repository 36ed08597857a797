package model

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEngineer Role = "engineer"
	RoleViewer   Role = "viewer"
)

type Principal struct {
	UserID string
	Name   string
	Role   Role
}

func (p Principal) CanEdit() bool {
	switch p.Role {
	case RoleAdmin, RoleManager, RoleEngineer:
		return true
	}
	return false
}

// LocalPrincipal is used when the API runs without token auth.
func LocalPrincipal() Principal {
	return Principal{UserID: "local", Name: "Local user", Role: RoleAdmin}
}
