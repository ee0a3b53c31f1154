package models

// Identity is the target of a user operation: either the caller itself
// (the literal "me" path id) or a named user.
type Identity struct {
	IsSelf   bool
	Username string
}

// ParseIdentity interprets a user path id
func ParseIdentity(id string) Identity {
	if id == SelfUsername {
		return Identity{IsSelf: true}
	}
	return Identity{Username: id}
}

// Resolve returns the concrete username the identity points at.
// For a self identity the caller must be non-nil.
func (i Identity) Resolve(caller *User) string {
	if i.IsSelf {
		if caller == nil {
			return ""
		}
		return caller.Username
	}
	return i.Username
}
