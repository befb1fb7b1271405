package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
	repo "github.com/dwiyanpr/product-catalog-api/internal/domain/repository"
	"github.com/dwiyanpr/product-catalog-api/pkg/helpers"
	"github.com/dwiyanpr/product-catalog-api/pkg/mailer"
)

var (
	// ErrInvalidCredentials is returned for unknown email AND wrong
	// password alike, so login failures carry no enumeration signal.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or revoked token")
	ErrUserNotFound       = errors.New("user not found")
)

const tokenBytes = 32

// AuthService owns registration, credential checks, and the bearer-token
// lifecycle. Every authenticated operation elsewhere starts from
// ResolveToken, so ownership checks can trust the caller identity they
// receive. Redis and the publisher are optional; nil disables caching and
// welcome mail respectively.
type AuthService struct {
	Users    repo.UserRepository
	Tokens   repo.TokenRepository
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
	Pub      *helpers.RabbitPublisher
	MailOn   bool
}

func NewAuthService(users repo.UserRepository, tokens repo.TokenRepository, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger, pub *helpers.RabbitPublisher, mailOn bool) *AuthService {
	return &AuthService{
		Users:    users,
		Tokens:   tokens,
		Redis:    rdb,
		CacheTTL: cacheTTL,
		Logger:   logger,
		Pub:      pub,
		MailOn:   mailOn,
	}
}

func tokenCacheKey(hash string) string {
	return "auth:token:" + hash
}

// Register creates the user with a hashed password. No token is issued;
// the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: name, Email: email, Password: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.enqueueWelcome(ctx, u)
	return u, nil
}

// Login validates credentials and mints a fresh opaque token. Prior tokens
// for the user stay valid (multi-session).
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	plain, err := helpers.NewToken(tokenBytes)
	if err != nil {
		return nil, "", err
	}
	hash := helpers.HashToken(plain)
	if err := s.Tokens.Create(ctx, &entity.AccessToken{UserID: u.ID, TokenHash: hash}); err != nil {
		return nil, "", err
	}
	s.cacheSet(ctx, hash, u.ID)

	return u, plain, nil
}

// ResolveToken maps a plaintext bearer token to its owning user. Fails
// with ErrInvalidToken when the token is absent, unknown, or revoked.
func (s *AuthService) ResolveToken(ctx context.Context, plain string) (*entity.User, error) {
	if plain == "" {
		return nil, ErrInvalidToken
	}
	hash := helpers.HashToken(plain)

	if uid := s.cacheGet(ctx, hash); uid != "" {
		u, err := s.Users.GetByID(ctx, uid)
		if err != nil || u == nil {
			return nil, ErrInvalidToken
		}
		return u, nil
	}

	t, err := s.Tokens.GetByHash(ctx, hash)
	if err != nil || !t.Valid() {
		return nil, ErrInvalidToken
	}
	if err := s.Tokens.TouchLastUsed(ctx, hash); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("touch token last_used failed")
	}

	u, err := s.Users.GetByID(ctx, t.UserID)
	if err != nil || u == nil {
		return nil, ErrInvalidToken
	}
	s.cacheSet(ctx, hash, u.ID)
	return u, nil
}

// Logout revokes the presented token. Idempotent: revoking an unknown or
// already-revoked token still succeeds. The cache entry is dropped before
// the row flips so a revoked token can never be served from cache.
func (s *AuthService) Logout(ctx context.Context, plain string) {
	if plain == "" {
		return
	}
	hash := helpers.HashToken(plain)
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, tokenCacheKey(hash)).Err(); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("token cache del failed")
		}
	}
	if err := s.Tokens.Revoke(ctx, hash); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("token revoke failed")
	}
}

// Profile returns the user for an already-resolved identity.
func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AuthService) cacheSet(ctx context.Context, hash, userID string) {
	if s.Redis == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if err := s.Redis.Set(ctx, tokenCacheKey(hash), userID, ttl).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("token cache set failed")
	}
}

func (s *AuthService) cacheGet(ctx context.Context, hash string) string {
	if s.Redis == nil {
		return ""
	}
	uid, err := s.Redis.Get(ctx, tokenCacheKey(hash)).Result()
	if err != nil {
		return ""
	}
	return uid
}

// enqueueWelcome publishes the welcome email job. Fire and forget:
// registration never fails because the broker is down.
func (s *AuthService) enqueueWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil || !s.MailOn {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.Name, "Email": u.Email},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("welcome email enqueue failed")
	}
}
