package models

import "github.com/google/uuid"

// assignID fills an empty primary key with a random UUID. IDs are unique
// across tables, so a bare id can be looked up in more than one of them.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
