package model

import "time"

// User is a local operator account. Credential holds a bcrypt hash, or the
// raw password for accounts created before hashing was introduced.
type User struct {
	ID         int64
	Name       string
	Email      string
	Credential string
	Enabled    bool
	CreatedAt  time.Time
}

// UserUpdate lists the mutable fields of a User. Nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Enabled  *bool
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil && u.Enabled == nil
}
