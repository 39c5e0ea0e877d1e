package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	SubjectID primitive.ObjectID
	Role      Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}
