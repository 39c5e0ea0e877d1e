package utils

import "strings"

// NormalizeEmail lower-cases and trims. Unlike provider specific alias folding, the stored form must
// stay deliverable because contacts receive mail at it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskEmail keeps the first and last character of the local part so logs can tell contacts apart
// without holding their address.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || len(local) <= 2 {
		return email
	}
	return local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:] + "@" + domain
}
