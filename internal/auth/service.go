package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-kasir/internal/common"
)

var (
	ErrInvalidCredentials = common.NewAppError("INVALID_CREDENTIALS", "invalid username or password", http.StatusUnauthorized, nil)
	ErrUnauthorized       = common.NewAppError("UNAUTHORIZED", "missing or invalid token", http.StatusUnauthorized, nil)
)

// Operator is a back-office user allowed to manage pricing rules.
type Operator struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
}

// OperatorStore loads operators for authentication.
type OperatorStore interface {
	GetOperatorByUsername(ctx context.Context, username string) (Operator, error)
}

type operatorDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore reads operators from Postgres.
type PGStore struct {
	DB operatorDB
}

const getOperatorByUsernameSQL = `
SELECT id, username, password_hash, role
FROM operators
WHERE username = $1
`

func (s PGStore) GetOperatorByUsername(ctx context.Context, username string) (Operator, error) {
	var op Operator
	err := s.DB.QueryRow(ctx, getOperatorByUsernameSQL, username).
		Scan(&op.ID, &op.Username, &op.PasswordHash, &op.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Operator{}, ErrInvalidCredentials
		}
		return Operator{}, err
	}
	return op, nil
}

// TokenPair is the login response payload.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service authenticates operators and issues access tokens.
type Service struct {
	Store    OperatorStore
	Secret   []byte
	Issuer   string
	Audience string
	TokenTTL time.Duration
	Now      func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login verifies the password and returns a signed access token. Lookup
// failures and password mismatches are indistinguishable to the caller.
func (s Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	op, err := s.Store.GetOperatorByUsername(ctx, username)
	if err != nil {
		return TokenPair{}, err
	}
	match, err := argon2id.ComparePasswordAndHash(password, op.PasswordHash)
	if err != nil || !match {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.signAccessToken(op)
}

func (s Service) signAccessToken(op Operator) (TokenPair, error) {
	now := s.now()
	exp := now.Add(s.TokenTTL)
	tok, err := jwt.NewBuilder().
		Issuer(s.Issuer).
		Audience([]string{s.Audience}).
		Subject(op.ID.String()).
		IssuedAt(now).
		Expiration(exp).
		Claim("role", op.Role).
		Build()
	if err != nil {
		return TokenPair{}, err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.Secret))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: string(signed), ExpiresAt: exp}, nil
}

// ParseAccessToken validates signature, issuer, audience and expiry and
// returns the operator id carried in the subject.
func (s Service) ParseAccessToken(raw string) (uuid.UUID, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, s.Secret),
		jwt.WithIssuer(s.Issuer),
		jwt.WithAudience(s.Audience),
		jwt.WithValidate(true),
	)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	id, err := uuid.Parse(tok.Subject())
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}
