// Package actor carries the authenticated caller identity through a request.
// Authentication itself happens upstream; a trusted gateway sets the tenant
// and role headers this service consumes.
package actor

import "context"

const (
	RoleStaff       = "staff"
	RoleTenantAdmin = "tenant-admin"
	RoleSuperadmin  = "superadmin"
)

type Actor struct {
	TenantID int
	Role     string
}

func (a Actor) Superadmin() bool {
	return a.Role == RoleSuperadmin
}

// CanReadSecrets reports whether the actor may see unmasked provider
// credentials for the given tenant.
func (a Actor) CanReadSecrets(tenantID int) bool {
	if a.Superadmin() {
		return true
	}
	return a.Role == RoleTenantAdmin && a.TenantID == tenantID
}

// CanManageTenant reports whether the actor may write configuration for the
// given tenant.
func (a Actor) CanManageTenant(tenantID int) bool {
	if a.Superadmin() {
		return true
	}
	return a.Role == RoleTenantAdmin && a.TenantID == tenantID
}

type contextKey struct{}

func WithContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}
