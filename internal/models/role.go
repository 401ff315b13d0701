package models

// Role discriminates the three account kinds.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a route or claim value onto a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleDriver, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// SharesIdentity reports whether the role's email and mobile live in the
// identity space shared by customers and drivers.
func (r Role) SharesIdentity() bool {
	return r == RoleCustomer || r == RoleDriver
}

// Verifiable reports whether accounts of this role go through the email and
// mobile confirmation workflow.
func (r Role) Verifiable() bool {
	return r.SharesIdentity()
}

// Channel is one of the two independent verification paths.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelMobile Channel = "mobile"
)

func ParseChannel(s string) (Channel, bool) {
	switch Channel(s) {
	case ChannelEmail, ChannelMobile:
		return Channel(s), true
	default:
		return "", false
	}
}
