package services

import (
	"context"

	"wegroup/internal/common"
	"wegroup/internal/models"

	"github.com/google/uuid"
)

// Session is the caller identity resolved by the transport layer. It is passed
// explicitly into every gate call; the core never reads ambient globals.
type Session struct {
	UserID        uuid.UUID
	TenantID      uuid.UUID
	Authenticated bool
}

// Requirement describes what an operation demands from the caller. A zero
// TargetTenantID means the operation is not tenant-scoped; an empty RoleName
// means authentication alone suffices.
type Requirement struct {
	RoleName       string
	TargetTenantID uuid.UUID
}

// RequireAuthenticated gates on a valid session only.
func RequireAuthenticated() Requirement {
	return Requirement{}
}

// RequireRole gates on the caller holding the named role in their own tenant.
func RequireRole(name string) Requirement {
	return Requirement{RoleName: name}
}

// RequireTenant gates on the caller belonging to the target tenant, or
// holding the cross-tenant override role.
func RequireTenant(tenantID uuid.UUID) Requirement {
	return Requirement{TargetTenantID: tenantID}
}

// RequireTenantRole combines both checks.
func RequireTenantRole(tenantID uuid.UUID, name string) Requirement {
	return Requirement{TargetTenantID: tenantID, RoleName: name}
}

type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyForbidden       DenyReason = "forbidden"
)

// Decision is the gate's tagged outcome. An allowed decision carries the
// resolved tenant and role set for downstream use.
type Decision struct {
	Allowed  bool
	Reason   DenyReason
	TenantID uuid.UUID
	Roles    []string
}

// Err maps a denied decision onto the error taxonomy. Nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == DenyUnauthenticated {
		return common.ErrUnauthenticated
	}
	return common.ErrForbidden
}

// AuthzService is the authorization gate every state-mutating operation calls
// before touching the store. The decision is computed fresh per call — role
// membership can change between requests, so nothing here is cached.
type AuthzService interface {
	Authorize(ctx context.Context, session Session, req Requirement) (Decision, error)
}

type authzService struct {
	rbacSvc RBACService
}

func NewAuthzService(rbacSvc RBACService) AuthzService {
	return &authzService{rbacSvc: rbacSvc}
}

func (s *authzService) Authorize(ctx context.Context, session Session, req Requirement) (Decision, error) {
	if !session.Authenticated || session.UserID == uuid.Nil {
		return Decision{Allowed: false, Reason: DenyUnauthenticated}, nil
	}

	roles, err := s.rbacSvc.ResolveEffectiveRoles(ctx, session.TenantID, session.UserID)
	if err != nil {
		return Decision{}, common.WrapStore("resolve roles", err)
	}
	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	// Role names are compared only here. A richer permission model can
	// replace this without touching any caller.
	if req.RoleName != "" && !containsRole(roleNames, req.RoleName) {
		return Decision{Allowed: false, Reason: DenyForbidden}, nil
	}

	// Cross-tenant access requires the override role, held in the caller's
	// home tenant. super_admin is stored per tenant like every system role
	// but its name acts as a global capability.
	if req.TargetTenantID != uuid.Nil && req.TargetTenantID != session.TenantID {
		if !containsRole(roleNames, models.RoleSuperAdmin) {
			return Decision{Allowed: false, Reason: DenyForbidden}, nil
		}
	}

	return Decision{Allowed: true, TenantID: session.TenantID, Roles: roleNames}, nil
}

func containsRole(names []string, want string) bool {
	for _, name := range names {
		if name == want {
			return true
		}
	}
	return false
}
