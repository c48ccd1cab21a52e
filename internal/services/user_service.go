package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/logging"
	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

// Login failures stay deliberately vague towards the caller; the two
// sentinels let the handler pick 401 vs 403 without leaking which it was
// into the credentials message.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

const minPasswordLength = 6

// UserService owns authentication and account administration.
type UserService struct {
	db     *gorm.DB
	secret string
	expiry time.Duration
}

func NewUserService(db *gorm.DB, secret string, expiry time.Duration) *UserService {
	return &UserService{db: db, secret: secret, expiry: expiry}
}

// TokenExpiry is the session lifetime, used by the handler to size cookies.
func (s *UserService) TokenExpiry() time.Duration { return s.expiry }

// Login verifies credentials and issues a signed access token.
func (s *UserService) Login(ctx context.Context, in dtos.LoginRequest) (*models.User, string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", in.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !auth.VerifyPassword(in.Password, user.HashedPassword) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.Active {
		return nil, "", ErrAccountDisabled
	}

	token, err := auth.CreateAccessToken(s.secret, user.Username, user.Role, s.expiry)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return RecordAudit(tx, &user, constants.ActionLogin, "user", &user.ID, "")
	})
	if err != nil {
		return nil, "", err
	}

	logging.Info("User logged in", "username", user.Username, "role", user.Role.String())
	return &user, token, nil
}

// ChangePassword rotates the caller's own password after verifying the old one.
func (s *UserService) ChangePassword(ctx context.Context, actor *models.User, in dtos.ChangePasswordRequest) error {
	if !auth.VerifyPassword(in.OldPassword, actor.HashedPassword) {
		return apperrors.Validation("Current password is incorrect")
	}
	if len(in.NewPassword) < minPasswordLength {
		return apperrors.Validation("Password must be at least %d characters", minPasswordLength)
	}

	hashed, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(actor).Update("hashed_password", hashed).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return RecordAudit(tx, actor, constants.ActionChangePassword, "user", &actor.ID, "User changed their own password")
	})
}

// List returns all accounts ordered by username.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Create adds an account. Admin only; the handler enforces the role.
func (s *UserService) Create(ctx context.Context, actor *models.User, in dtos.UserCreateRequest) (*models.User, error) {
	role := constants.Role(in.Role)
	if !role.Valid() {
		return nil, apperrors.Validation("Role must be one of: admin, operator, readonly")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.Validation("Password must be at least %d characters", minPasswordLength)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:       in.Username,
		FullName:       in.FullName,
		HashedPassword: hashed,
		Role:           role,
		Active:         true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("Username '%s' already exists", in.Username)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		details := fmt.Sprintf("Created user '%s' with role '%s'", user.Username, user.Role)
		return RecordAudit(tx, actor, constants.ActionCreate, "user", &user.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies a partial account update.
func (s *UserService) Update(ctx context.Context, actor *models.User, userID uint, in dtos.UserUpdateRequest) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	var changes []string
	if in.FullName != nil {
		user.FullName = *in.FullName
		changes = append(changes, fmt.Sprintf("name='%s'", *in.FullName))
	}
	if in.Role != nil {
		role := constants.Role(*in.Role)
		if !role.Valid() {
			return nil, apperrors.Validation("Role must be one of: admin, operator, readonly")
		}
		user.Role = role
		changes = append(changes, fmt.Sprintf("role='%s'", role))
	}
	if in.Active != nil {
		user.Active = *in.Active
		changes = append(changes, fmt.Sprintf("active=%t", *in.Active))
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperrors.Validation("Password must be at least %d characters", minPasswordLength)
		}
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
		changes = append(changes, "password changed")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		details := fmt.Sprintf("Updated user '%s': %s", user.Username, strings.Join(changes, ", "))
		return RecordAudit(tx, actor, constants.ActionUpdate, "user", &user.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureDefaultAdmin seeds the bootstrap admin account on an empty user table.
func (s *UserService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := models.User{
		Username:       username,
		FullName:       "Administrator",
		HashedPassword: hashed,
		Role:           constants.RoleAdmin,
		Active:         true,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	logging.Warn("Seeded default admin account, change its password", "username", username)
	return nil
}
