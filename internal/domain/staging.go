package domain

import "strings"

// StagedSignup is an unverified signup attempt held in the staging store.
// PK: key ("otp:<email>"). ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type StagedSignup struct {
	Key          string `json:"-" dynamodbav:"key"`
	Email        string `json:"email" dynamodbav:"email"`
	Code         string `json:"-" dynamodbav:"code"`
	Name         string `json:"name" dynamodbav:"name"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	ExpiresAt    int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// StagingKey returns the staging-store key for an email.
func StagingKey(email string) string {
	return "otp:" + NormalizeEmail(email)
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
