package domain

import "time"

// User represents an operator account
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Matricule    string // Unique service number, "4" followed by 8 digits
	Email        string // Unique email address
	PasswordHash string // Bcrypt hashed password (not returned in API)
	Language     string // UI language preference: en, fr, nl
	CreatedAt    time.Time
	LastLogin    time.Time // zero until the first login
}
