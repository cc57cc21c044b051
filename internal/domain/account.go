package domain

import "time"

// Account is a permanent user record. PasswordHash never leaves the server.
type Account struct {
	AccountID    string    `json:"id" dynamodbav:"account_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	Status       string    `json:"status" dynamodbav:"status"`
	Department   string    `json:"department,omitempty" dynamodbav:"department,omitempty"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// CreateAccountRequest is the admin payload for creating an account directly.
type CreateAccountRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,max=64,maxbytes=72"`
	Role       string `json:"role" validate:"omitempty,oneof=user customer manager admin"`
	Status     string `json:"status" validate:"omitempty,oneof=active inactive pending"`
	Department string `json:"department" validate:"max=100"`
}
