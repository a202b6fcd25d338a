package shared

import "github.com/golang-jwt/jwt/v5"

// shared types across the application

// AuthClaims is the payload of an access token. The subject is the user id;
// role is informational, authority is re-resolved from storage on each request.
type AuthClaims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
