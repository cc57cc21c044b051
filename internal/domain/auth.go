package domain

// AuthResult is returned by every flow that ends in a signed session token.
type AuthResult struct {
	Token   string
	Account *Account
}
