package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(db base.Querier) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(db)}
}

const userColumns = `id, username, first_name, last_name, role, telegram_id, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.TelegramID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// ListByRoles получает пользователей с любой из указанных ролей
func (r *UserRepository) ListByRoles(ctx context.Context, roles ...model.Role) ([]*model.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE role = ANY($1) ORDER BY id`

	rows, err := r.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("list users by roles: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

const trainerQuery = `
	SELECT u.id,
	       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
	       t.approved_hours
	FROM users u
	LEFT JOIN trainers t ON t.user_id = u.id
	WHERE u.role = 'TRAINER'
`

// ListTrainers получает всех тренеров вместе с лимитом часов
func (r *UserRepository) ListTrainers(ctx context.Context) ([]*model.Trainer, error) {
	rows, err := r.Query(ctx, trainerQuery+` ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	defer rows.Close()

	var trainers []*model.Trainer
	for rows.Next() {
		var t model.Trainer
		if err := rows.Scan(&t.UserID, &t.Name, &t.ApprovedHours); err != nil {
			return nil, fmt.Errorf("scan trainer: %w", err)
		}
		trainers = append(trainers, &t)
	}

	return trainers, rows.Err()
}

// GetTrainer получает тренера по ID пользователя
func (r *UserRepository) GetTrainer(ctx context.Context, userID int64) (*model.Trainer, error) {
	var t model.Trainer
	err := r.QueryRow(ctx, trainerQuery+` AND u.id = $1`, userID).Scan(&t.UserID, &t.Name, &t.ApprovedHours)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get trainer: %w", err)
	}

	return &t, nil
}
