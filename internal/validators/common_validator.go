package validators

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"distress-server/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("numeric_string", validateNumericString)
	validate.RegisterValidation("role", validateRole)
}

var ErrInvalidObjectID = errors.New("invalid object ID format")

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Details flattens the errors into field -> message, the shape carried by AppError.
func (v ValidationErrors) Details() map[string]string {
	details := make(map[string]string, len(v))
	for _, err := range v {
		if _, exists := details[err.Field]; !exists {
			details[err.Field] = err.Message
		}
	}
	return details
}

// AsAppError returns nil when there are no errors.
func (v ValidationErrors) AsAppError() error {
	if len(v) == 0 {
		return nil
	}
	return utils.NewValidationError(utils.ErrValidationFailed, v.Details())
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "body", Tag: "invalid", Message: err.Error()}}
		}
		for _, fe := range fieldErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(fe),
				Tag:     fe.Tag(),
				Value:   fmt.Sprintf("%v", fe.Value()),
				Message: getErrorMessage(fe),
			})
		}
	}

	return validationErrors
}

// fieldPath drops the top level struct name so "CreateDistressRequest.Message" reads "Message".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "len":
		return fmt.Sprintf("%s must contain exactly %s item(s)", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "phone_number":
		return "Invalid phone number format"
	case "numeric_string":
		return fmt.Sprintf("%s must be a number", err.Field())
	case "role", "oneof":
		return fmt.Sprintf("%s must be one of user, admin", err.Field())
	case "latitude":
		return "Latitude must be between -90 and 90"
	case "longitude":
		return "Longitude must be between -180 and 180"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return utils.IsValidPhone(phone)
}

func validateNumericString(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func validateRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return role == "" || role == "user" || role == "admin"
}

// ParseObjectID parses a path parameter, failing with a validation error naming field.
func ParseObjectID(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{field: "Invalid ID format"})
	}
	return oid, nil
}
