package login

// Permission represents a single permission grant
type Permission struct {
	Key string
}

// Role represents a user's role with its permission set
type Role struct {
	Key         string
	Permissions []Permission
}

// User represents a tenant-scoped user account
type User struct {
	// ID is the user identifier, projected into the token subject
	ID string

	// OrganizationID is the owning tenant
	OrganizationID string

	// Email is unique within the organization
	Email string

	// EmailVerified reports whether the email address has been confirmed
	EmailVerified bool

	// Name is the user's display name
	Name string

	// PasswordHash is the encoded Argon2id hash of the user's password
	PasswordHash string

	// Role is the user's role, projected into tokens when the roles or
	// permissions scopes are requested
	Role *Role
}

// RoleKey returns the user's role key, or empty when no role is assigned
func (u *User) RoleKey() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Key
}

// PermissionKeys returns the user's permission keys
func (u *User) PermissionKeys() []string {
	if u.Role == nil || len(u.Role.Permissions) == 0 {
		return nil
	}

	permissions := make([]string, 0, len(u.Role.Permissions))
	for _, permission := range u.Role.Permissions {
		permissions = append(permissions, permission.Key)
	}
	return permissions
}
