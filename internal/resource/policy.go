package resource

// Operation names passed to the permission hook.
const (
	OpCreate = "create"
	OpRead   = "read"
	OpUpdate = "update"
)

// Policy is the permission hook evaluated before every service
// operation. Implementations return a forbidden error to deny.
type Policy interface {
	Allow(tok Token, operation, resourceName string) error
}

// AllowAll grants every operation to any authenticated caller. This is
// the default policy; authentication itself happens at the boundary.
type AllowAll struct{}

func (AllowAll) Allow(Token, string, string) error { return nil }

// RoleBased requires one of the listed roles per operation. Operations
// without an entry are allowed for any authenticated caller.
type RoleBased struct {
	// Requires maps an operation (create/read/update) to the roles
	// that may perform it.
	Requires map[string][]string
}

func (p RoleBased) Allow(tok Token, operation, resourceName string) error {
	roles, ok := p.Requires[operation]
	if !ok {
		return nil
	}
	for _, r := range roles {
		if tok.HasRole(r) {
			return nil
		}
	}
	return Forbiddenf("user %s may not %s %s documents", tok.UserID, operation, resourceName)
}
