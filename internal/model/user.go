package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Caller is the resolved identity passed explicitly into every vault
// operation. Services never read identity from ambient state.
type Caller struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type AuthClaims struct {
	UserID  string `json:"sub"`
	Email   string `json:"email"`
	Type    string `json:"typ"`
	TokenID string `json:"jti"`
}

type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type TokenPair struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         AuthUser `json:"user"`
}
