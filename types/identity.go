package types

// Identity describes the user on whose behalf a plugin is running.
// It is exposed to plugins through their runtime context so they can
// scope data and decisions to the current user without performing
// their own authentication.
type Identity struct {
	// ID is the stable, host-assigned identifier for the user.
	ID string `json:"id"`

	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// Email is the user's primary email address, when known.
	Email string `json:"email,omitempty"`

	// Roles lists the host roles granted to the user (e.g. "admin").
	Roles []string `json:"roles,omitempty"`
}

// Anonymous returns the identity used when no user is signed in.
func Anonymous() Identity {
	return Identity{ID: "anonymous"}
}

// IsAnonymous returns true when the identity carries no real user.
func (i Identity) IsAnonymous() bool {
	return i.ID == "" || i.ID == "anonymous"
}

// HasRole returns true if the identity was granted the named role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
