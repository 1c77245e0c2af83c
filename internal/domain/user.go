package domain

import "time"

// User is an account known to the development server.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
