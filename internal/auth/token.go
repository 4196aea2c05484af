package auth

import "github.com/golang-jwt/jwt/v5"

// DisplayName reads the "name" claim from token without checking its
// signature. It is for display only; the backend authorizes every request.
func DisplayName(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	name, _ := claims["name"].(string)
	return name
}
