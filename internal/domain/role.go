package domain

const (
	RoleUser     = "user"
	RoleCustomer = "customer"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// ValidRole reports whether r names one of the known account roles.
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}
