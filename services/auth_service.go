package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simplexsales/backend/apperr"
	"github.com/simplexsales/backend/dto"
	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/notify"
	"github.com/simplexsales/backend/repository"
	"github.com/simplexsales/backend/utils"
)

// ForgotPasswordMessage is returned whether or not the account exists.
const ForgotPasswordMessage = "If that account exists, you will receive reset instructions"

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

type AuthService struct {
	users    repository.UserRepository
	tokens   *utils.TokenManager
	notifier notify.Notifier
	baseURL  string
}

func NewAuthService(users repository.UserRepository, tokens *utils.TokenManager, notifier notify.Notifier, baseURL string) *AuthService {
	return &AuthService{users: users, tokens: tokens, notifier: notifier, baseURL: baseURL}
}

// AuthResult is the login/registration payload: sanitized user plus a fresh
// token pair.
type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (s *AuthService) Register(ctx context.Context, body dto.RegisterDTO) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(body.Email))
	phone := strings.TrimSpace(body.Phone)
	businessName := strings.ToLower(strings.TrimSpace(body.BusinessName))

	if !models.PhoneRegex.MatchString(phone) {
		return nil, apperr.BadRequest("Phone number must be a valid Indian mobile number with +91 country code")
	}

	exists, err := s.users.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("User already exists")
	}

	hash, err := utils.HashPassword(body.Password)
	if err != nil {
		return nil, err
	}

	verificationToken, err := utils.OneTimeToken()
	if err != nil {
		return nil, err
	}
	verificationExpiry := time.Now().Add(verificationTokenTTL)

	now := time.Now().UTC()
	user := &models.User{
		BusinessName:            businessName,
		Email:                   email,
		Phone:                   phone,
		FullName:                strings.TrimSpace(body.FullName),
		PasswordHash:            hash,
		Role:                    models.RoleUser,
		EmailVerificationToken:  verificationToken,
		EmailVerificationExpiry: &verificationExpiry,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, err
	}

	verifyURL := fmt.Sprintf("%s/auth/verify-email/%s", s.baseURL, verificationToken)
	s.bestEffortEmail(ctx, user.Email, "Verify your email", "Click to verify: "+verifyURL)
	s.bestEffortSMS(ctx, user.Phone, "Welcome! Verify your email: "+verifyURL)

	return s.issueTokenPair(ctx, user)
}

// Login authenticates by email and password. When requiredRole is non-empty
// the stored role must match, otherwise the caller is Forbidden. Lookup and
// password failures report the same Unauthorized message so callers cannot
// probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, body dto.LoginDTO, requiredRole models.Role) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(body.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	if requiredRole != "" && user.Role != requiredRole {
		return nil, apperr.Forbidden("Forbidden: incorrect role")
	}

	return s.issueTokenPair(ctx, user)
}

// Logout clears the stored refresh token; the old one becomes permanently
// unusable even before it expires.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if err := s.users.SetRefreshToken(ctx, id, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	return nil
}

// Refresh exchanges a refresh token for a new pair. The token must decode
// validly and equal the stored value; rotation is conditional on the old
// value so each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	id, err := parseUserID(claims.SubjectID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	accessToken, err := s.tokens.AccessToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.tokens.RefreshToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}

	rotated, err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, newRefresh)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// ForgotPassword never reveals whether the account exists: a missing account
// is a silent success.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := utils.OneTimeToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password/%s", s.baseURL, token)
	s.bestEffortEmail(ctx, user.Email, "Reset your password", "Reset link: "+resetURL)
	s.bestEffortSMS(ctx, user.Phone, "Reset your password: "+resetURL)

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.consumableUser(ctx, token, s.users.FindByResetToken, func(u *models.User) *time.Time {
		return u.ForgotPasswordExpiry
	}, "Invalid or expired token")
	if err != nil {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.ConsumeResetToken(ctx, user.ID, hash)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.consumableUser(ctx, token, s.users.FindByVerificationToken, func(u *models.User) *time.Time {
		return u.EmailVerificationExpiry
	}, "Invalid or expired verification token")
	if err != nil {
		return err
	}
	return s.users.MarkEmailVerified(ctx, user.ID)
}

// ResendVerification overwrites any previous verification token, so earlier
// links stop working.
func (s *AuthService) ResendVerification(ctx context.Context, userID string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	token, err := utils.OneTimeToken()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(ctx, user.ID, token, time.Now().Add(verificationTokenTTL)); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/auth/verify-email/%s", s.baseURL, token)
	s.bestEffortEmail(ctx, user.Email, "Verify your email", "Click to verify: "+verifyURL)

	return nil
}

// ChangePassword replaces the hash after checking the current password. It
// does not touch the stored refresh token.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, body dto.ChangePasswordDTO) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}

	if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
		return apperr.BadRequest("Current password is incorrect")
	}

	hash, err := utils.HashPassword(body.NewPassword)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, user.ID, hash)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *AuthService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	sanitized := make([]models.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, *u.Sanitized())
	}
	return sanitized, total, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *models.User) (*AuthResult, error) {
	accessToken, err := s.tokens.AccessToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.RefreshToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// consumableUser resolves a one-time token to its user. The token must match
// and its paired expiry must be strictly in the future; an expiry equal to
// "now" is already expired. Every failure mode yields the same message.
func (s *AuthService) consumableUser(
	ctx context.Context,
	token string,
	find func(context.Context, string) (*models.User, error),
	expiry func(*models.User) *time.Time,
	message string,
) (*models.User, error) {
	if token == "" {
		return nil, apperr.BadRequest(message)
	}
	user, err := find(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.BadRequest(message)
		}
		return nil, err
	}
	exp := expiry(user)
	if exp == nil || !exp.After(time.Now()) {
		return nil, apperr.BadRequest(message)
	}
	return user, nil
}

func (s *AuthService) bestEffortEmail(ctx context.Context, to, subject, body string) {
	if to == "" {
		return
	}
	if err := s.notifier.SendEmail(ctx, to, subject, body); err != nil {
		log.Printf("notify: email to %s failed: %v", to, err)
	}
}

func (s *AuthService) bestEffortSMS(ctx context.Context, phone, message string) {
	if phone == "" {
		return
	}
	if err := s.notifier.SendSMS(ctx, phone, message); err != nil {
		log.Printf("notify: sms to %s failed: %v", phone, err)
	}
}

func parseUserID(userID string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.ObjectID{}, apperr.Unauthorized("Unauthorized")
	}
	return id, nil
}
