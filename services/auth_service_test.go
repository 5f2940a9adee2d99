package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplexsales/backend/apperr"
	"github.com/simplexsales/backend/dto"
	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/utils"
)

func newAuthFixture() (*AuthService, *memoryUserRepo, *recordingNotifier) {
	users := newMemoryUserRepo()
	notifier := &recordingNotifier{}
	tokens := utils.NewTokenManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	svc := NewAuthService(users, tokens, notifier, "http://localhost:8080")
	return svc, users, notifier
}

func registerBody() dto.RegisterDTO {
	return dto.RegisterDTO{
		BusinessName: "Acme Traders",
		Email:        "a@x.com",
		Phone:        "+919876543210",
		Password:     "secret1",
		FullName:     "Asha Rao",
	}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, status, ae.Status)
}

func TestRegisterReturnsSanitizedUser(t *testing.T) {
	svc, users, notifier := newAuthFixture()

	result, err := svc.Register(context.Background(), registerBody())
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// nothing secret on the returned struct
	assert.Empty(t, result.User.PasswordHash)
	assert.Empty(t, result.User.RefreshToken)
	assert.Empty(t, result.User.EmailVerificationToken)
	assert.Nil(t, result.User.EmailVerificationExpiry)

	// nor in its serialized form
	raw, err := json.Marshal(result.User)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{
		"passwordHash", "refreshToken",
		"forgotPasswordToken", "forgotPasswordExpiry",
		"emailVerificationToken", "emailVerificationExpiry",
	} {
		assert.NotContains(t, fields, key)
	}

	// the stored record does carry the credentials
	stored, err := users.FindByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.Equal(t, result.RefreshToken, stored.RefreshToken)
	assert.Len(t, stored.EmailVerificationToken, 64) // 256 bits, hex
	require.NotNil(t, stored.EmailVerificationExpiry)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *stored.EmailVerificationExpiry, time.Minute)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.False(t, stored.IsEmailVerified)

	require.Len(t, notifier.emailsWithSubject("Verify your email"), 1)
}

func TestRegisterDuplicateYieldsConflict(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	// same email
	body := registerBody()
	body.Phone = "+919876543211"
	_, err = svc.Register(ctx, body)
	requireStatus(t, err, http.StatusConflict)

	// same phone
	body = registerBody()
	body.Email = "b@x.com"
	_, err = svc.Register(ctx, body)
	requireStatus(t, err, http.StatusConflict)

	assert.Len(t, users.users, 1)
}

func TestRegisterRejectsInvalidPhone(t *testing.T) {
	svc, _, _ := newAuthFixture()

	body := registerBody()
	body.Phone = "+15551234567"
	_, err := svc.Register(context.Background(), body)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "nope"}, "")
	requireStatus(t, wrongPass, http.StatusUnauthorized)

	_, noAccount := svc.Login(ctx, dto.LoginDTO{Email: "ghost@x.com", Password: "nope"}, "")
	requireStatus(t, noAccount, http.StatusUnauthorized)

	assert.Equal(t, wrongPass.Error(), noAccount.Error())
}

func TestRoleScopedLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	creds := dto.LoginDTO{Email: "a@x.com", Password: "secret1"}

	_, err = svc.Login(ctx, creds, models.RoleAdmin)
	requireStatus(t, err, http.StatusForbidden)

	result, err := svc.Login(ctx, creds, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, result.User.Role)
}

func TestLoginRotatesRefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	loggedIn, err := svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "secret1"}, "")
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

	// the registration-time refresh token is no longer accepted
	_, err = svc.Refresh(ctx, registered.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(ctx, registered.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)

	// the rotated token still works exactly once
	_, err = svc.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, registered.User.ID.Hex()))

	_, err = svc.Refresh(ctx, registered.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	svc, users, notifier := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	require.NoError(t, svc.ForgotPassword(ctx, "ghost@x.com"))

	require.Len(t, notifier.emailsWithSubject("Reset your password"), 1)

	stored, err := users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ForgotPasswordToken, 64)
	require.NotNil(t, stored.ForgotPasswordExpiry)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ForgotPasswordExpiry, time.Minute)
}

func TestResetPasswordConsumesToken(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))

	stored, err := users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	token := stored.ForgotPasswordToken

	require.NoError(t, svc.ResetPassword(ctx, token, "brandnew"))

	// both fields cleared
	stored, err = users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ForgotPasswordToken)
	assert.Nil(t, stored.ForgotPasswordExpiry)

	// new password works, old one does not
	_, err = svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "brandnew"}, "")
	require.NoError(t, err)
	_, err = svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "secret1"}, "")
	requireStatus(t, err, http.StatusUnauthorized)

	// second consumption fails
	err = svc.ResetPassword(ctx, token, "another")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	token, err := utils.OneTimeToken()
	require.NoError(t, err)

	// expiry in the past
	require.NoError(t, users.SetResetToken(ctx, registered.User.ID, token, time.Now().Add(-time.Minute)))
	err = svc.ResetPassword(ctx, token, "brandnew")
	requireStatus(t, err, http.StatusBadRequest)

	// boundary: expiry of "now" is already expired
	require.NoError(t, users.SetResetToken(ctx, registered.User.ID, token, time.Now()))
	err = svc.ResetPassword(ctx, token, "brandnew")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestVerifyEmailConsumesToken(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	stored, err := users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	token := stored.EmailVerificationToken

	require.NoError(t, svc.VerifyEmail(ctx, token))

	stored, err = users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsEmailVerified)
	assert.Empty(t, stored.EmailVerificationToken)
	assert.Nil(t, stored.EmailVerificationExpiry)

	err = svc.VerifyEmail(ctx, token)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestResendVerificationInvalidatesPreviousToken(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)

	stored, err := users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	oldToken := stored.EmailVerificationToken

	require.NoError(t, svc.ResendVerification(ctx, registered.User.ID.Hex()))

	err = svc.VerifyEmail(ctx, oldToken)
	requireStatus(t, err, http.StatusBadRequest)

	stored, err = users.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, stored.EmailVerificationToken))
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerBody())
	require.NoError(t, err)
	userID := registered.User.ID.Hex()

	err = svc.ChangePassword(ctx, userID, dto.ChangePasswordDTO{
		CurrentPassword: "wrong",
		NewPassword:     "brandnew",
	})
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, svc.ChangePassword(ctx, userID, dto.ChangePasswordDTO{
		CurrentPassword: "secret1",
		NewPassword:     "brandnew",
	}))

	_, err = svc.Login(ctx, dto.LoginDTO{Email: "a@x.com", Password: "brandnew"}, "")
	require.NoError(t, err)
}

func TestCurrentUserUnknownID(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.CurrentUser(context.Background(), "deadbeefdeadbeefdeadbeef")
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusNotFound, ae.Status)
}
