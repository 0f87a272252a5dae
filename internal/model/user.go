package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags so
// that the password hash can never leak into a response body.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique username; uniqueness is enforced case-insensitively.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Profile      – optional free-form profile payload (JSON column, may be empty).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Profile      string    // users.profile (nullable JSON)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
