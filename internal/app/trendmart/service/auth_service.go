package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendmart/internal/app/trendmart/entity"
	"trendmart/internal/app/trendmart/repository"
	"trendmart/internal/app/trendmart/util"
	"trendmart/pkg/logger"

	"github.com/google/uuid"
)

// AuthService обрабатывает аутентификацию администраторов back-office
type AuthService struct {
	userRepo   repository.AdminUserRepository
	jwtManager *util.JWTManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.AdminUserRepository, jwtManager *util.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Login проверяет учетные данные и выпускает JWT токен
// Неизвестный пользователь и неверный пароль дают одинаковую ошибку
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &entity.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// EnsureDefaultAdmin создает учетную запись администратора по умолчанию,
// если в системе еще нет ни одного пользователя
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	passwordHash, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.AdminUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "admin",
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.Info().Str("username", username).Msg("Default admin user created")

	return nil
}
