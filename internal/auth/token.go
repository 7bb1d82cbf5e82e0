package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"budgetbuddy/internal/models"
)

// ErrInvalidToken indicates a token that failed signature, expiry, or
// shape validation.
var ErrInvalidToken = errors.New("invalid or expired token")

const resetPurpose = "password_reset"

// Identity is the caller identity embedded in a session token.
type Identity struct {
	UserID   int64
	Username string
}

// TokenManager issues and verifies signed JWTs. Verification is a pure
// signature and expiry check; nothing is persisted for session tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided secret, issuer, and
// token lifetime.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// IssueSession issues a signed session token for the user.
func (t *TokenManager) IssueSession(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      t.issuer,
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifySession checks a session token and returns the embedded identity.
// Reset tokens are rejected here even though they carry the same signature.
func (t *TokenManager) VerifySession(token string) (Identity, error) {
	claims, err := t.parse(token)
	if err != nil {
		return Identity{}, err
	}
	if _, isReset := claims["purpose"]; isReset {
		return Identity{}, fmt.Errorf("%w: wrong token purpose", ErrInvalidToken)
	}
	userID, err := subjectID(claims)
	if err != nil {
		return Identity{}, err
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return Identity{}, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}
	return Identity{UserID: userID, Username: username}, nil
}

// IssueReset issues a signed password-reset token for the user. The caller
// is expected to persist it; verification alone does not authorize a reset.
func (t *TokenManager) IssueReset(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":     t.issuer,
		"sub":     strconv.FormatInt(userID, 10),
		"purpose": resetPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyReset checks a reset token and returns the user it was minted for.
func (t *TokenManager) VerifyReset(token string) (int64, error) {
	claims, err := t.parse(token)
	if err != nil {
		return 0, err
	}
	if purpose, _ := claims["purpose"].(string); purpose != resetPurpose {
		return 0, fmt.Errorf("%w: wrong token purpose", ErrInvalidToken)
	}
	return subjectID(claims)
}

func (t *TokenManager) parse(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (int64, error) {
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject claim", ErrInvalidToken)
	}
	return id, nil
}
