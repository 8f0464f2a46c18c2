package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"marketplace-chat/internal/apperr"
)

// Principal is the verified identity extracted from a token.
type Principal struct {
	UserID string
	Role   Role
}

// TokenVerifier turns a bearer token into a verified principal. Token
// issuance lives in the marketplace auth service; this side only checks.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// JWTVerifier validates HMAC-signed tokens with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify parses and validates the token, requiring user_id and role claims.
func (v *JWTVerifier) Verify(token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperr.New(apperr.KindAuthRejected, "missing token")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, apperr.Wrap(apperr.KindAuthRejected, "invalid token", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperr.New(apperr.KindAuthRejected, "invalid token claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Principal{}, apperr.New(apperr.KindAuthRejected, "token carries no user id")
	}
	rawRole, _ := claims["role"].(string)

	return Principal{UserID: userID, Role: ParseRole(rawRole)}, nil
}
