package services

import (
	"context"
	"testing"
	"time"

	"distress-server/internal/models"
	"distress-server/internal/repositories/memory"
	"distress-server/internal/utils"
	"distress-server/internal/validators"
	"distress-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, allowAdminSignup bool) (AuthService, *utils.TokenIssuer) {
	t.Helper()
	security := testSecurity()
	security.AllowAdminSignup = allowAdminSignup
	tokens := utils.NewTokenIssuer(security.JWTSecret, security.JWTRefreshTokenTTL)
	return NewAuthService(memory.NewUserRepository(), tokens, security, logger.NewNop()), tokens
}

func registration(email, phone string) *validators.RegisterRequest {
	return &validators.RegisterRequest{
		FullName:    "Ada Obi",
		Email:       email,
		Password:    "secret1",
		PhoneNumber: phone,
		HomeAddress: "12 Allen Ave",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthService(t, false)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registration(" Ada@Example.com ", "+2348011111111"))
	require.NoError(t, err)
	require.NotNil(t, registered.User)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.Equal(t, models.RoleUser, registered.User.Role)
	assert.NotEqual(t, "secret1", registered.User.Password)

	claims, err := tokens.Validate(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.ID)
	assert.Equal(t, string(models.RoleUser), claims.Role)

	loggedIn, err := svc.Login(ctx, &validators.LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Nil(t, loggedIn.User)

	validated, err := svc.ValidateToken(ctx, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), validated.ID)
	assert.WithinDuration(t, time.Now().Add(utils.JWTLoginTokenTTL), validated.ExpiresAt.Time, time.Minute)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	svc, _ := newAuthService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("ada@example.com", "+2348011111111"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration("ada@example.com", "+2348022222222"))
	require.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Contains(t, err.Error(), utils.ErrEmailInUse)

	_, err = svc.Register(ctx, registration("other@example.com", "+2348011111111"))
	require.Equal(t, utils.KindConflict, utils.KindOf(err))
	assert.Contains(t, err.Error(), utils.ErrPhoneInUse)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t, false)

	req := registration("not-an-email", "+2348011111111")
	req.Password = "abc"
	_, err := svc.Register(context.Background(), req)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "Email")
	assert.Contains(t, appErr.Details, "Password")
}

func TestAuthService_AdminSignupGate(t *testing.T) {
	req := registration("boss@example.com", "+2348011111111")
	req.Role = string(models.RoleAdmin)

	closed, _ := newAuthService(t, false)
	_, err := closed.Register(context.Background(), req)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	open, _ := newAuthService(t, true)
	result, err := open.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, result.User.Role)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t, false)
	ctx := context.Background()

	_, err := svc.Register(ctx, registration("ada@example.com", "+2348011111111"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, &validators.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	_, err = svc.Login(ctx, &validators.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = svc.Login(ctx, &validators.LoginRequest{Email: "ada@example.com"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	// Non-admins are turned away before the password is checked.
	_, err = svc.AdminLogin(ctx, &validators.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
}

func TestAuthService_AdminLogin(t *testing.T) {
	svc, tokens := newAuthService(t, true)
	ctx := context.Background()

	req := registration("boss@example.com", "+2348011111111")
	req.Role = string(models.RoleAdmin)
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	result, err := svc.AdminLogin(ctx, &validators.LoginRequest{Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestAuthService_Tokens(t *testing.T) {
	svc, tokens := newAuthService(t, false)
	ctx := context.Background()

	_, err := svc.ValidateToken(ctx, "")
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))

	_, err = svc.ValidateToken(ctx, "not.a.jwt")
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	expired, err := tokens.Generate("64b7f0c2a1b2c3d4e5f60718", "user", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, expired)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	foreign := utils.NewTokenIssuer("another-secret", time.Hour)
	forged, err := foreign.Generate("64b7f0c2a1b2c3d4e5f60718", "admin", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, forged)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	valid, err := tokens.Generate("64b7f0c2a1b2c3d4e5f60718", "user", time.Minute)
	require.NoError(t, err)
	refreshed, err := svc.RefreshToken(ctx, valid)
	require.NoError(t, err)

	claims, err := tokens.Validate(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.ID)
	assert.WithinDuration(t, time.Now().Add(utils.JWTRefreshTokenTTL), claims.ExpiresAt.Time, time.Minute)

	_, err = svc.RefreshToken(ctx, expired)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))
}
