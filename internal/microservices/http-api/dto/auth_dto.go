package dto

// Data Transfer Objects for the signup and token exchange

// SignupRequest: payload for requesting a confirmation code
type SignupRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the identity; the code only travels by email.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code for a token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
