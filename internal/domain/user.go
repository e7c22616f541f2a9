package domain

import (
	"strings"
	"time"
)

// User is a login account. Its email is the principal identity the API
// compares against donor and recipient documents.
type User struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail is the canonical form every account, donor and recipient
// email is stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
