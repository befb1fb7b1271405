package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User // by id
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.users {
		if ex.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.AccessToken // by hash
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]*entity.AccessToken{}}
}

func (r *memTokenRepo) Create(_ context.Context, t *entity.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.LastUsedAt = t.CreatedAt
	cp := *t
	r.tokens[t.TokenHash] = &cp
	return nil
}

func (r *memTokenRepo) GetByHash(_ context.Context, hash string) (*entity.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memTokenRepo) Revoke(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok {
		t.Revoked = true
	}
	return nil
}

func (r *memTokenRepo) TouchLastUsed(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[hash]; ok {
		t.LastUsedAt = time.Now()
	}
	return nil
}

func newAuthService() (*application.AuthService, *memUserRepo) {
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	return application.NewAuthService(users, tokens, nil, 0, nil, nil, false), users
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	assert.NotEqual(t, "password1", u.Password, "password must be stored hashed")

	logged, token, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	resolved, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "dup@x.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "B", "dup@x.com", "password2")
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Equal(t, 1, users.count(), "no second row on conflict")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.NoError(t, err)

	_, _, errWrongPwd := svc.Login(ctx, "a@x.com", "not-the-password")
	_, _, errUnknown := svc.Login(ctx, "nobody@x.com", "password1")

	require.Error(t, errWrongPwd)
	require.Error(t, errUnknown)
	assert.Equal(t, errWrongPwd.Error(), errUnknown.Error(), "no user-enumeration signal")
	assert.ErrorIs(t, errWrongPwd, application.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, application.ErrInvalidCredentials)
}

func TestResolveTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.ResolveToken(ctx, "")
	assert.ErrorIs(t, err, application.ErrInvalidToken)

	_, err = svc.ResolveToken(ctx, "definitely-not-issued")
	assert.ErrorIs(t, err, application.ErrInvalidToken)
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.NoError(t, err)
	_, token, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)

	svc.Logout(ctx, token)
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, application.ErrInvalidToken)

	// Second logout with the same revoked token must not blow up;
	// the boundary surfaces it as success.
	svc.Logout(ctx, token)
	svc.Logout(ctx, "never-issued")
}

func TestMultiSession(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.NoError(t, err)

	_, tok1, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	_, tok2, err := svc.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	require.NotEqual(t, tok1, tok2)

	svc.Logout(ctx, tok1)

	_, err = svc.ResolveToken(ctx, tok1)
	assert.ErrorIs(t, err, application.ErrInvalidToken)
	_, err = svc.ResolveToken(ctx, tok2)
	assert.NoError(t, err, "logging out one session must not kill the other")
}

func TestProfile(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "a@x.com", "password1")
	require.NoError(t, err)

	got, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = svc.Profile(ctx, uuid.NewString())
	assert.ErrorIs(t, err, application.ErrUserNotFound)
}
