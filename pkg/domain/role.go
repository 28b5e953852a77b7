package domain

// Role is the profile type assigned at registration. It gates which
// collection transitions an actor may request.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleCollector Role = "collector"
	RoleRecycler  Role = "recycler"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleCollector, RoleRecycler:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
