// Package domain contains core domain types for the APSFD portal.
package domain

import "strings"

// Placeholder identity values used when the authentication webhook does not
// supply them.
const (
	DefaultUserName = "APSFD User"
	DefaultUserRole = "Credit Agent"
)

// Identity is the authenticated user of a portal session.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// FirstName returns the first word of the user's name.
func (i Identity) FirstName() string {
	fields := strings.Fields(i.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
