// Package roles exposes the role-permission table as a read-only catalog.
// Role definitions live in configuration, not the database, so there are no
// write endpoints here; assigning roles to users belongs to the users
// package.
package roles

// Role describes one entry of the role-permission table.
type Role struct {
	Name        string   `json:"name"`
	Wildcard    bool     `json:"wildcard"`
	Permissions []string `json:"permissions"`
}
