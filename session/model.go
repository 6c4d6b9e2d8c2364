package session

// Role is one of the closed set of role tags the storefront API assigns.
// Role predicates compare tags as strings, so an unknown tag simply never
// matches rather than failing.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleSupport  Role = "SUPPORT"
	RoleAdmin    Role = "ADMIN"
)

// User is the cached authenticated identity. It is replaced wholesale on
// every successful login or register and cleared on logout or irrecoverable
// refresh failure.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// HasRole reports whether the user carries the given role tag.
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the user carries any of the given role tags.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}
