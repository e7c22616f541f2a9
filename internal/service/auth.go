package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"foodshare/internal/domain"
)

const tokenIssuer = "foodshare"

// Principal is the verified identity behind an access token.
type Principal struct {
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Session is an issued access token.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService registers accounts and issues and revokes HS256 access tokens.
type AuthService struct {
	users   domain.UserRepository
	revoked domain.RevocationStore
	secret  []byte
	ttl     time.Duration
	log     zerolog.Logger
	opts    Options
}

// NewAuthService signs tokens with secret and lets them live for ttl.
func NewAuthService(users domain.UserRepository, revoked domain.RevocationStore, secret string, ttl time.Duration, log zerolog.Logger, opts Options) *AuthService {
	return &AuthService{
		users:   users,
		revoked: revoked,
		secret:  []byte(secret),
		ttl:     ttl,
		log:     log.With().Str("component", "auth").Logger(),
		opts:    opts.withDefaults(),
	}
}

// Register creates an account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)
	if err := required("email", email); err != nil {
		return nil, err
	}
	if err := required("password", password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", domain.ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("email", email).Msg("user registered")
	s.opts.Recorder.RecordOperation("user", "register")
	return s.issue(email)
}

// Login checks the credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrUnauthorized)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	s.opts.Recorder.RecordOperation("session", "create")
	return s.issue(email)
}

// Logout revokes the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, p Principal) error {
	if err := s.revoked.Revoke(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Info().Str("email", p.Email).Str("jti", p.TokenID).Msg("session revoked")
	s.opts.Recorder.RecordOperation("session", "delete")
	return nil
}

// DeleteUser removes the account. Donor and recipient profiles are untouched.
func (s *AuthService) DeleteUser(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.users.Delete(ctx, email); err != nil {
		return err
	}
	s.log.Info().Str("email", email).Msg("user deleted")
	s.opts.Recorder.RecordOperation("user", "delete")
	return nil
}

// Authenticate verifies signature, expiry and revocation of a bearer token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: token is missing subject or id", domain.ErrUnauthorized)
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
	}
	return &Principal{Email: claims.Subject, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *AuthService) issue(email string) (*Session, error) {
	now := s.opts.Now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   email,
		ID:        s.opts.NewID(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{AccessToken: signed, TokenType: "Bearer", ExpiresAt: jwt.NewNumericDate(expires).Time}, nil
}
