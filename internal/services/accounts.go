package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"askboard/internal/logctx"
	"askboard/internal/models"
	"askboard/internal/utils"

	"gorm.io/gorm"
)

const minPasswordLen = 6

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates a regular user account.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "services.accounts.Register"

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(username); n < 2 || n > 64 {
		return nil, fail(op, ErrInvalidArgument, "username must be 2 to 64 characters")
	}
	if strings.IndexFunc(username, unicode.IsControl) >= 0 {
		return nil, fail(op, ErrInvalidArgument, "username contains control characters")
	}
	if !strings.Contains(email, "@") {
		return nil, fail(op, ErrInvalidArgument, "invalid email")
	}
	if len(password) < minPasswordLen {
		return nil, fail(op, ErrInvalidArgument, "password must be at least 6 characters")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, storeError(op, err)
	}
	if count > 0 {
		return nil, fail(op, ErrConflict, "email already registered")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, storeError(op, err)
	}
	if count > 0 {
		return nil, fail(op, ErrConflict, "username already taken")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrInternal, Err: err}
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, storeError(op, err)
	}

	logctx.From(ctx).Info("user_registered", slog.String("op", op), slog.String("user_id", user.ID))
	return &user, nil
}

// Login checks credentials. Banned accounts cannot log in.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	const op = "services.accounts.Login"

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(op, ErrUnauthenticated, "invalid email or password")
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		logctx.From(ctx).Warn("login_failed", slog.String("op", op), slog.String("user_id", user.ID))
		return nil, fail(op, ErrUnauthenticated, "invalid email or password")
	}
	if user.IsBanned {
		return nil, fail(op, ErrForbidden, "account is banned")
	}
	return &user, nil
}

// Get loads a user by id.
func (s *AccountService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.accounts.Get"

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, storeError(op, err)
	}
	return &user, nil
}
