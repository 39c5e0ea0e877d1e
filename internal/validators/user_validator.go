package validators

import (
	"strings"

	"distress-server/internal/models"
	"distress-server/internal/utils"
)

type RegisterRequest struct {
	FullName    string `json:"fullName" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone_number"`
	HomeAddress string `json:"homeAddress" validate:"required"`
	Role        string `json:"role" validate:"omitempty,role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type PhoneNumberInput struct {
	Number      string `json:"number"`
	Digits      string `json:"digits"`
	CountryCode string `json:"countryCode"`
}

type EmergencyContactInput struct {
	Name         string             `json:"name"`
	FirstName    string             `json:"firstName"`
	LastName     string             `json:"lastName"`
	Emails       []string           `json:"emails" validate:"omitempty,dive,email"`
	PhoneNumbers []PhoneNumberInput `json:"phoneNumbers"`
}

// UserUpdateRequest is partial. Absent fields stay untouched.
type UserUpdateRequest struct {
	FullName          *string                  `json:"fullName" validate:"omitempty,max=200"`
	Email             *string                  `json:"email" validate:"omitempty,email"`
	Password          *string                  `json:"password"`
	PhoneNumber       *string                  `json:"phoneNumber" validate:"omitempty,phone_number"`
	HomeAddress       *string                  `json:"homeAddress"`
	EmergencyContacts *[]EmergencyContactInput `json:"emergencyContacts" validate:"omitempty,dive"`
	Role              *string                  `json:"role" validate:"omitempty,role"`
}

func ValidateRegister(req *RegisterRequest, minPassword int) ValidationErrors {
	req.Email = utils.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.HomeAddress = strings.TrimSpace(req.HomeAddress)

	errs := ValidateStruct(req)
	if req.Password != "" && len(req.Password) < minPassword {
		errs = append(errs, passwordTooShort(minPassword))
	}
	return errs
}

func ValidateLogin(req *LoginRequest) ValidationErrors {
	req.Email = utils.NormalizeEmail(req.Email)
	return ValidateStruct(req)
}

func ValidateUserUpdate(req *UserUpdateRequest, minPassword int) ValidationErrors {
	if req.Email != nil {
		normalized := utils.NormalizeEmail(*req.Email)
		req.Email = &normalized
	}

	errs := ValidateStruct(req)

	if req.Password != nil && len(*req.Password) < minPassword {
		errs = append(errs, passwordTooShort(minPassword))
	}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		errs = append(errs, ValidationError{Field: "FullName", Tag: "required", Message: "FullName cannot be empty"})
	}
	if req.EmergencyContacts != nil {
		errs = append(errs, ValidateEmergencyContacts(*req.EmergencyContacts)...)
	}
	return errs
}

// ValidateEmergencyContacts enforces a name part per contact and a number or digits per phone.
func ValidateEmergencyContacts(contacts []EmergencyContactInput) ValidationErrors {
	var errs ValidationErrors
	for i, contact := range contacts {
		if strings.TrimSpace(contact.Name+contact.FirstName+contact.LastName) == "" {
			errs = append(errs, ValidationError{
				Field:   indexed("EmergencyContacts", i, "Name"),
				Tag:     "required",
				Message: "Contact needs a name, first name or last name",
			})
		}
		for j, phone := range contact.PhoneNumbers {
			if strings.TrimSpace(phone.Number) == "" && strings.TrimSpace(phone.Digits) == "" {
				errs = append(errs, ValidationError{
					Field:   indexed("EmergencyContacts", i, indexed("PhoneNumbers", j, "Number")),
					Tag:     "required",
					Message: "Phone number needs a number or digits",
				})
			}
		}
	}
	return errs
}

func ToEmergencyContacts(inputs []EmergencyContactInput) []models.EmergencyContact {
	contacts := make([]models.EmergencyContact, 0, len(inputs))
	for _, in := range inputs {
		contact := models.EmergencyContact{
			Name:         strings.TrimSpace(in.Name),
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Emails:       make([]string, 0, len(in.Emails)),
			PhoneNumbers: make([]models.PhoneNumber, 0, len(in.PhoneNumbers)),
		}
		for _, email := range in.Emails {
			contact.Emails = append(contact.Emails, strings.TrimSpace(email))
		}
		for _, phone := range in.PhoneNumbers {
			contact.PhoneNumbers = append(contact.PhoneNumbers, models.PhoneNumber{
				Number:      strings.TrimSpace(phone.Number),
				Digits:      strings.TrimSpace(phone.Digits),
				CountryCode: strings.TrimSpace(phone.CountryCode),
			})
		}
		contacts = append(contacts, contact)
	}
	return contacts
}

func passwordTooShort(min int) ValidationError {
	return ValidationError{
		Field:   "Password",
		Tag:     "min",
		Message: "Password must be at least " + itoa(min) + " characters",
	}
}
