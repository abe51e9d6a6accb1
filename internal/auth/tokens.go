package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates a token that failed signature or claims checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a structurally valid token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// RefreshClaims is the verified content of a refresh token.
type RefreshClaims struct {
	UserID    int64
	JTI       string
	ExpiresAt time.Time
}

// Signer mints and verifies the HS256 tokens used for API authentication.
// Access tokens carry only the subject; refresh tokens additionally carry a
// jti used as the server-side revocation key.
type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	nowFunc func() time.Time
}

// NewSigner constructs a Signer. An empty secret is refused so that a
// misconfigured deployment fails at startup rather than at first login.
func NewSigner(secret string, accessTTL, refreshTTL time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	return &Signer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		nowFunc:    time.Now,
	}, nil
}

// SignAccess mints a short-lived access token for the user.
func (s *Signer) SignAccess(userID int64) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.accessTTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expires, nil
}

// SignRefresh mints a long-lived refresh token carrying the provided jti.
func (s *Signer) SignRefresh(userID int64, jti string) (string, time.Time, error) {
	if jti == "" {
		return "", time.Time{}, errors.New("auth: jti must not be empty")
	}

	now := s.now()
	expires := now.Add(s.refreshTTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, expires, nil
}

// VerifyAccess validates an access token and returns its subject user id.
func (s *Signer) VerifyAccess(token string) (int64, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return 0, err
	}
	return subjectID(claims)
}

// VerifyRefresh validates a refresh token and returns its verified claims.
func (s *Signer) VerifyRefresh(token string) (RefreshClaims, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return RefreshClaims{}, err
	}
	return refreshClaims(claims)
}

// DecodeRefresh verifies the signature of a refresh token but tolerates an
// elapsed expiry. Logout paths use it so a stale cookie still maps back to
// the session rows it should remove.
func (s *Signer) DecodeRefresh(token string) (RefreshClaims, error) {
	claims, err := s.parse(token, false)
	if err != nil {
		return RefreshClaims{}, err
	}
	return refreshClaims(claims)
}

func (s *Signer) parse(token string, validateClaims bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Signer) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc().UTC()
	}
	return time.Now().UTC()
}

func subjectID(claims *jwt.RegisteredClaims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func refreshClaims(claims *jwt.RegisteredClaims) (RefreshClaims, error) {
	userID, err := subjectID(claims)
	if err != nil {
		return RefreshClaims{}, err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return RefreshClaims{}, ErrInvalidToken
	}
	return RefreshClaims{
		UserID:    userID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
