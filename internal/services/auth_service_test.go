package services

import (
	"sync"
	"testing"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (r *fakeAuthRepo) CreateUser(user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return 0, repositories.ErrDuplicateKey
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *fakeAuthRepo) GetUserByID(userID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeAuthRepo) GetUserByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) GetUsers(role *string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.User
	for id := int64(1); id < r.nextID; id++ {
		user, ok := r.users[id]
		if !ok {
			continue
		}
		if role != nil && *role != "" && user.Role != *role {
			continue
		}
		result = append(result, *user)
	}
	return result, nil
}

func registerReq(username, role string) RegisterRequest {
	return RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse-battery",
		FullName: "Test User",
		Role:     role,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	user, err := svc.Register(registerReq("ada", models.RoleCustomer))
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash, "password must be hashed")

	auth, err := svc.Login(LoginRequest{Username: "ada", Password: "correct-horse-battery"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, user.ID, auth.User.ID)
	assert.True(t, auth.ExpiresAt.After(time.Now()))

	_, err = svc.Login(LoginRequest{Username: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRoleRestrictions(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	_, err := svc.Register(registerReq("boss", models.RoleAdmin))
	assert.ErrorIs(t, err, ErrValidation, "admin accounts are not self-service")

	_, err = svc.Register(registerReq("speedy", models.RoleRider))
	assert.NoError(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	_, err := svc.Register(registerReq("ada", models.RoleCustomer))
	require.NoError(t, err)
	_, err = svc.Register(registerReq("ada", models.RoleCustomer))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRefreshTokenAndProfile(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	user, err := svc.Register(registerReq("ada", models.RoleCustomer))
	require.NoError(t, err)

	auth, err := svc.RefreshToken(Actor{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)

	profile, err := svc.GetUserProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username)

	_, err = svc.GetUserProfile(404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUsers(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), time.Hour)

	_, err := svc.Register(registerReq("ada", models.RoleCustomer))
	require.NoError(t, err)
	_, err = svc.Register(registerReq("speedy", models.RoleRider))
	require.NoError(t, err)

	_, err = svc.GetUsers(customer, nil)
	assert.ErrorIs(t, err, ErrAuthorization)

	all, err := svc.GetUsers(admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	role := models.RoleRider
	riders, err := svc.GetUsers(admin, &role)
	require.NoError(t, err)
	require.Len(t, riders, 1)
	assert.Equal(t, "speedy", riders[0].Username)

	bogus := "chef"
	_, err = svc.GetUsers(admin, &bogus)
	assert.ErrorIs(t, err, ErrValidation)
}
