package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GuestTokenTTL matches the default guest cart lifetime.
const GuestTokenTTL = 30 * 24 * time.Hour

// GuestClaims identify an anonymous visitor's session. The guest id namespaces
// that visitor's cart in storage.
type GuestClaims struct {
	GuestID uuid.UUID `json:"guest_id"`
	jwt.RegisteredClaims
}

func getGuestSecret() string {
	secret := os.Getenv("GUEST_TOKEN_SECRET")
	if secret == "" {
		panic("FATAL: GUEST_TOKEN_SECRET environment variable is not set. Refusing to start with an insecure configuration.")
	}
	return secret
}

func GenerateGuestToken(guestID uuid.UUID) (string, error) {
	secret := getGuestSecret()

	claims := GuestClaims{
		GuestID: guestID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(GuestTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "storefront-guest",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateGuestToken(tokenString string) (*GuestClaims, error) {
	secret := getGuestSecret()

	token, err := jwt.ParseWithClaims(tokenString, &GuestClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer("storefront-guest"))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*GuestClaims); ok && token.Valid && claims.GuestID != uuid.Nil {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
