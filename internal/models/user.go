package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// PhoneNumber keeps the raw display form next to the optional normalized digits.
type PhoneNumber struct {
	Number      string `json:"number,omitempty" bson:"number,omitempty"`
	Digits      string `json:"digits,omitempty" bson:"digits,omitempty"`
	CountryCode string `json:"countryCode,omitempty" bson:"countryCode,omitempty"`
}

// Dialable prefers the normalized digits.
func (p PhoneNumber) Dialable() string {
	if p.Digits != "" {
		return p.Digits
	}
	return p.Number
}

type EmergencyContact struct {
	Name         string        `json:"name,omitempty" bson:"name,omitempty"`
	FirstName    string        `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     string        `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Emails       []string      `json:"emails" bson:"emails"`
	PhoneNumbers []PhoneNumber `json:"phoneNumbers" bson:"phoneNumbers"`
}

func (c EmergencyContact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type User struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FullName          string             `json:"fullName" bson:"fullName"`
	Email             string             `json:"email" bson:"email"`
	Password          string             `json:"-" bson:"password"`
	PhoneNumber       string             `json:"phoneNumber" bson:"phoneNumber"`
	HomeAddress       string             `json:"homeAddress" bson:"homeAddress"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts" bson:"emergencyContacts"`
	Role              Role               `json:"role" bson:"role"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserUpdate is a partial update. Password must already be hashed.
type UserUpdate struct {
	FullName          *string
	Email             *string
	Password          *string
	PhoneNumber       *string
	HomeAddress       *string
	EmergencyContacts *[]EmergencyContact
	Role              *Role
}
