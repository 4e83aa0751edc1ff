package tests

import (
	"context"
	"sync"
	"testing"

	"proptrust/internal/config"
	"proptrust/internal/dto"
	"proptrust/internal/model"
	"proptrust/internal/repository"
	"proptrust/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (f *fakeUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Active = true
	}
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret-do-not-use",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
}

func newAuthEnv(t *testing.T) (service.AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return service.NewAuthService(repo, authTestConfig()), repo
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	svc, repo := newAuthEnv(t)
	seedUser(t, repo, "conveyancer1", "correct-horse", "conveyancer")
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "conveyancer1", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "conveyancer", resp.User.Role)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "conveyancer1", Password: "wrong"})
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "correct-horse"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, repo := newAuthEnv(t)
	u := seedUser(t, repo, "agent1", "correct-horse", "agent")
	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "agent1", Password: "correct-horse"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshToken(t *testing.T) {
	svc, repo := newAuthEnv(t)
	u := seedUser(t, repo, "admin1", "correct-horse", "admin")
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "admin1", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "admin1", refreshed.User.Username)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	assert.Error(t, err)

	// a deactivated user cannot refresh with an old token
	require.NoError(t, repo.SoftDelete(ctx, u.ID))
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.EqualError(t, err, "user not found or inactive")
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo := newAuthEnv(t)
	ctx := context.Background()

	resp, err := svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "agent2",
		Name:     "Nyasha Dube",
		Password: "a-long-password",
		Role:     "agent",
	})
	require.NoError(t, err)
	assert.Equal(t, "agent2", resp.Username)
	assert.True(t, resp.Active)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	stored, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, "a-long-password", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("a-long-password")))
}

func TestUpdateUser(t *testing.T) {
	svc, repo := newAuthEnv(t)
	u := seedUser(t, repo, "agent3", "old-password", "agent")
	ctx := context.Background()

	email := "agent3@proptrust.co.zw"
	resp, err := svc.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{
		Role:     "conveyancer",
		Email:    &email,
		Password: "new-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "conveyancer", resp.Role)
	require.NotNil(t, resp.Email)
	assert.Equal(t, email, *resp.Email)

	// new password works, old one does not
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "agent3", Password: "new-password"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "agent3", Password: "old-password"})
	assert.Error(t, err)

	_, err = svc.UpdateUser(ctx, uuid.New(), dto.UpdateUserRequest{Name: "Ghost"})
	assert.EqualError(t, err, "user not found")
}

func TestListUsersFiltersInactive(t *testing.T) {
	svc, repo := newAuthEnv(t)
	seedUser(t, repo, "active1", "correct-horse", "agent")
	gone := seedUser(t, repo, "gone1", "correct-horse", "agent")
	ctx := context.Background()

	require.NoError(t, svc.DeactivateUser(ctx, gone.ID))

	active, err := svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "active1", active[0].Username)

	all, err := svc.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.ReactivateUser(ctx, gone.ID))
	active, err = svc.ListUsers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
