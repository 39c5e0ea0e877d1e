package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	nonPhoneChars = regexp.MustCompile(`[^\d+]`)
)

func IsValidPhone(phone string) bool {
	// Remove all non-digit characters except +
	cleaned := nonPhoneChars.ReplaceAllString(phone, "")

	// Basic E.164 format validation
	return phoneRegex.MatchString(cleaned)
}

// NormalizePhone returns phone in international form. Numbers already carrying a + are kept. Local numbers
// take the contact's country calling code in place of the trunk prefix; without one they are returned as digits
// so the carrier can decide, never as a bogus +0... number.
func NormalizePhone(phone, countryCode string) string {
	normalized := nonPhoneChars.ReplaceAllString(phone, "")
	if normalized == "" {
		return ""
	}
	if strings.HasPrefix(normalized, "+") {
		return "+" + strings.ReplaceAll(normalized, "+", "")
	}

	code := strings.ReplaceAll(nonPhoneChars.ReplaceAllString(countryCode, ""), "+", "")
	switch {
	case code != "" && strings.HasPrefix(normalized, code):
		return "+" + normalized
	case code != "":
		return "+" + code + strings.TrimLeft(normalized, "0")
	case strings.HasPrefix(normalized, "0"):
		return normalized
	default:
		return "+" + normalized
	}
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}

	// Show last 4 digits
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
