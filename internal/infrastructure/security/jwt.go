package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminTokenTTL bounds the lifetime of an issued admin token.
const AdminTokenTTL = 24 * time.Hour

// GenerateAdminToken creates a signed JWT for the admin dashboard.
func GenerateAdminToken(jwtSecret string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(AdminTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateJWT validates a JWT token and returns the claims.
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// IsAdminClaims reports whether claims carry the admin role.
func IsAdminClaims(claims jwt.MapClaims) bool {
	role, _ := claims["role"].(string)
	return role == "admin"
}
