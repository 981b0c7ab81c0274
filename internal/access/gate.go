package access

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleSales Role = "sales"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrUnknownRole     = errors.New("unknown role")
)

// Principal is the authenticated caller.
type Principal struct {
	ID          uuid.UUID
	Role        Role
	Email       string
	DisplayName string
}

// Valid reports whether the role is one the gate recognises.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleSales
}

// ParseRole разбирает роль из строки.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", eris.Wrapf(ErrUnknownRole, "%q", value)
	}
	return role, nil
}

// CanAccess decides whether p may read data owned by ownerID. Sales staff can
// read every user's data; a user only their own.
func CanAccess(p Principal, ownerID uuid.UUID) bool {
	switch p.Role {
	case RoleSales:
		return true
	case RoleUser:
		return p.ID != uuid.Nil && p.ID == ownerID
	default:
		return false
	}
}

// IsOwner разрешает изменения только владельцу данных, независимо от роли.
func IsOwner(p Principal, ownerID uuid.UUID) bool {
	return p.Role.Valid() && p.ID != uuid.Nil && p.ID == ownerID
}

// Authorize returns ErrUnauthenticated for a missing principal and
// ErrForbidden when CanAccess denies the read.
func Authorize(p *Principal, ownerID uuid.UUID) error {
	if p == nil {
		recordDenial("unauthenticated")
		return ErrUnauthenticated
	}
	if !CanAccess(*p, ownerID) {
		recordDenial("forbidden")
		return ErrForbidden
	}
	return nil
}

// AuthorizeOwner is Authorize for mutations.
func AuthorizeOwner(p *Principal, ownerID uuid.UUID) error {
	if p == nil {
		recordDenial("unauthenticated")
		return ErrUnauthenticated
	}
	if !IsOwner(*p, ownerID) {
		recordDenial("not_owner")
		return ErrForbidden
	}
	return nil
}
