package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore keeps users in memory, matching emails the way the SQL
// store does (case-insensitive).
type fakeUserStore struct {
	users  []models.User
	nextID int64
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range s.users {
		if strings.EqualFold(s.users[i].Email, email) {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *models.User) error {
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users = append(s.users, *user)
	return nil
}

func (s *fakeUserStore) GetUsers(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func newTestAuthService() (*AuthService, *fakeUserStore) {
	store := &fakeUserStore{}
	return NewAuthService(store, "test-secret", time.Hour), store
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "Ana", "ana@mesamaster.test", "1234", models.RoleMesero)
	require.NoError(t, err)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "1234", created.PasswordHash)

	token, user, err := svc.Login(ctx, "ANA@mesamaster.test", "1234")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	require.NotEmpty(t, token)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, models.RoleMesero, claims.Role)
}

func TestLoginRejections(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "Ana", "ana@mesamaster.test", "1234", models.RoleMesero)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "", "1234")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, _, err = svc.Login(ctx, "ana@mesamaster.test", "")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, _, err = svc.Login(ctx, "nadie@mesamaster.test", "1234")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, _, err = svc.Login(ctx, "ana@mesamaster.test", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "", "x@y.test", "1234", models.RoleMesero)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.CreateUser(ctx, "Ana", "x@y.test", "1234", "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.CreateUser(ctx, "Ana", "ana@mesamaster.test", "1234", models.RoleGerente)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "Otra Ana", "Ana@mesamaster.test", "5678", models.RoleMesero)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestParseTokenRejectsGarbageAndForeignSignatures(t *testing.T) {
	svc, store := newTestAuthService()
	ctx := context.Background()

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.CreateUser(ctx, "Ana", "ana@mesamaster.test", "1234", models.RoleMesero)
	require.NoError(t, err)

	other := NewAuthService(store, "other-secret", time.Hour)
	token, _, err := other.Login(ctx, "ana@mesamaster.test", "1234")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestLoginTokenExpiry(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewAuthService(store, "test-secret", -time.Minute)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "Ana", "ana@mesamaster.test", "1234", models.RoleMesero)
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "ana@mesamaster.test", "1234")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrBadCredentials)
}
