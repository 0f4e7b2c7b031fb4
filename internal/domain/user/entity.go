// Package user defines the user entity as seen by meal planning
package user

// User is read-only here. LineID is the external messaging-platform identity
// and may be missing for users created by other channels.
type User struct {
	ID     int
	Name   string
	LineID *string
}

// HasLineID reports whether the user is linked to a LINE account
func (u User) HasLineID() bool {
	return u.LineID != nil && *u.LineID != ""
}
