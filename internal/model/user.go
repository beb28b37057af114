package model

import "time"

// UserID uniquely identifies a staff user
type UserID string

// RankAdmin is the rank of administrators
const RankAdmin = 99

// User is a staff member who can log in and register points
type User struct {
	ID              UserID
	FirstName       string
	LastName        string
	Username        string
	PasswordHash    string // bcrypt hash
	Email           string
	Phone           string
	AssignedStation StationID
	Rank            int
	Code            string // login code, unique when set
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin reports whether the user has administrator rank
func (u *User) IsAdmin() bool {
	return u.Rank == RankAdmin
}

// LoginLogEntry records a login attempt
type LoginLogEntry struct {
	ID      string
	UserID  UserID // empty when the attempt did not match a user
	Success bool
	IP      string
	Date    time.Time
}
