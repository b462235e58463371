package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"go.uber.org/zap"
)

// UserService поиск пользователей для Telegram-бота
type UserService struct {
	userRepo storage.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo storage.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetByTelegramID получает пользователя по Telegram ID, nil если не привязан
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, nil
}

// Staff получает пользователя по Telegram ID и проверяет что он администратор или менеджер.
// Для непривязанного аккаунта возвращает ErrNotFound, для остальных ролей nil, false.
func (s *UserService) Staff(ctx context.Context, telegramID int64) (*model.User, bool, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, fmt.Errorf("%w: telegram account %d is not linked", ErrNotFound, telegramID)
	}

	if !user.Role.IsStaff() {
		s.logger.Warn("Non-staff user tried a staff command",
			zap.Int64("user_id", user.ID),
			zap.String("role", string(user.Role)),
		)
		return user, false, nil
	}

	return user, true, nil
}
