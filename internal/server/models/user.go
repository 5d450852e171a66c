// Package models defines the documents persisted by the server and the
// shapes exchanged with its services.
package models

// User is an account. Email is stored normalized and is unique.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Nickname     string `json:"nickname"`
}

// PublicUser is the part of a User that may leave the server.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}
