package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	req := &RegisterRequest{
		FullName:    " Ada Obi ",
		Email:       " Ada@Example.COM ",
		Password:    "secret1",
		PhoneNumber: "+2348012345678",
		HomeAddress: "12 Allen Ave",
	}
	assert.Empty(t, ValidateRegister(req, 6))
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "Ada Obi", req.FullName)

	short := &RegisterRequest{
		FullName:    "Ada",
		Email:       "ada@example.com",
		Password:    "abc",
		PhoneNumber: "+2348012345678",
		HomeAddress: "x",
		Role:        "superuser",
	}
	details := ValidateRegister(short, 6).Details()
	assert.Contains(t, details, "Password")
	assert.Contains(t, details, "Role")
}

func TestValidateUserUpdate_Contacts(t *testing.T) {
	contacts := []EmergencyContactInput{
		{FirstName: "Tunde", PhoneNumbers: []PhoneNumberInput{{Number: "+234 801 000 0000"}}},
		{Emails: []string{"x@y.com"}},
		{Name: "Kemi", PhoneNumbers: []PhoneNumberInput{{CountryCode: "234"}}},
	}
	req := &UserUpdateRequest{EmergencyContacts: &contacts}

	details := ValidateUserUpdate(req, 6).Details()
	assert.Contains(t, details, "EmergencyContacts[1].Name")
	assert.Contains(t, details, "EmergencyContacts[2].PhoneNumbers[0].Number")
	assert.NotContains(t, details, "EmergencyContacts[0].Name")
}

func TestValidateUserUpdate_NormalizesEmail(t *testing.T) {
	email := "  Someone@Mail.com"
	req := &UserUpdateRequest{Email: &email}
	assert.Empty(t, ValidateUserUpdate(req, 6))
	assert.Equal(t, "someone@mail.com", *req.Email)
}

func TestToEmergencyContacts(t *testing.T) {
	contacts := ToEmergencyContacts([]EmergencyContactInput{
		{Name: " Mum ", Emails: []string{"mum@example.com"}, PhoneNumbers: []PhoneNumberInput{{Number: "+1 555", Digits: "1555"}}},
	})

	assert.Len(t, contacts, 1)
	assert.Equal(t, "Mum", contacts[0].Name)
	assert.Equal(t, "1555", contacts[0].PhoneNumbers[0].Dialable())
	assert.NotNil(t, ToEmergencyContacts(nil))
}
