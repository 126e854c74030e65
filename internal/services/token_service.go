package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("verification token expired")
	ErrTokenInvalid = errors.New("verification token invalid")
)

// EmailTokenTTL is the validity window for verification links.
const EmailTokenTTL = 24 * time.Hour

// TokenService signs and verifies self-contained email verification tokens.
// A token carries only the user id and an issue time; nothing is stored, so
// a link stays usable until it expires even after a successful verification.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

type emailTokenClaims struct {
	UserID int `json:"uid"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: EmailTokenTTL}
}

// SetTTL overrides the validity window, used by tests to mint
// already-expired tokens.
func (ts *TokenService) SetTTL(ttl time.Duration) {
	ts.ttl = ttl
}

func (ts *TokenService) IssueEmailToken(userID int) (string, error) {
	now := time.Now()
	claims := emailTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}

// VerifyEmailToken validates signature and freshness and returns the user id
// the token was issued for. Expiry is reported separately from every other
// failure so the endpoint can tell the user to request a fresh link.
func (ts *TokenService) VerifyEmailToken(tokenString string) (int, error) {
	claims := &emailTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return ts.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrTokenInvalid
	}
	return claims.UserID, nil
}
