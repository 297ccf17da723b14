package user

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/testutil"
	"MedFund-Backend/pkg/jwt"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (UserService, jwt.JWTService) {
	t.Helper()
	db := testutil.NewDB(t)
	jwtService := jwt.NewJWTService("secret")
	return NewUserService(NewUserRepository(db), jwtService), jwtService
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwtService := newService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, domain.RegisterRequest{
		Name:     "Meera",
		Email:    " Meera@Example.com ",
		Password: "password123",
		Role:     domain.RoleDonor,
	})
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", res.Email)
	assert.Equal(t, domain.RoleDonor, res.Role)

	login, err := svc.Login(ctx, domain.LoginRequest{Email: "meera@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDonor, login.Role)

	id, role, err := jwtService.GetUserIDByToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, id)
	assert.Equal(t, domain.RoleDonor, role)

	me, err := svc.Me(ctx, domain.Session{UserID: id, Role: role})
	require.NoError(t, err)
	assert.Equal(t, "Meera", me.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	req := domain.RegisterRequest{Name: "A", Email: "a@example.com", Password: "password123", Role: domain.RoleRecipient}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_CannotBecomeAdmin(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Eve", Email: "eve@example.com", Password: "password123", Role: domain.RoleAdmin,
	})
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "password123", Role: domain.RoleDonor,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "a@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "Admin", "admin@medfund.test", "adminpass1")
	require.NoError(t, err)
	second, err := svc.EnsureAdmin(ctx, "Admin", "admin@medfund.test", "adminpass1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.RoleAdmin, second.Role)
}

func TestMe_UnknownUser(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Me(context.Background(), domain.Session{UserID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
