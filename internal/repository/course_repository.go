package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository/base"
)

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(db base.Querier) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(db)}
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `
		SELECT id, name, description, class_duration_minutes, is_group_class, created_at
		FROM courses
		WHERE id = $1
	`

	var course model.Course
	var durationMinutes int
	err := r.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&durationMinutes,
		&course.IsGroupClass,
		&course.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}
	course.ClassDuration = time.Duration(durationMinutes) * time.Minute

	return &course, nil
}

// AddTrainer добавляет тренера в состав группового курса (повторное добавление игнорируется)
func (r *CourseRepository) AddTrainer(ctx context.Context, courseID, trainerID int64) error {
	query := `
		INSERT INTO course_trainers (course_id, trainer_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, trainer_id) DO NOTHING
	`

	if _, err := r.ExecAffected(ctx, query, courseID, trainerID); err != nil {
		return fmt.Errorf("add course trainer: %w", err)
	}
	return nil
}

// SetTrainers заменяет состав тренеров курса
func (r *CourseRepository) SetTrainers(ctx context.Context, courseID int64, trainerIDs []int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM course_trainers WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear course trainers: %w", err)
	}

	for _, trainerID := range trainerIDs {
		if err := r.AddTrainer(ctx, courseID, trainerID); err != nil {
			return err
		}
	}
	return nil
}

// ListTrainerIDs получает ID тренеров курса
func (r *CourseRepository) ListTrainerIDs(ctx context.Context, courseID int64) ([]int64, error) {
	rows, err := r.Query(ctx, `SELECT trainer_id FROM course_trainers WHERE course_id = $1 ORDER BY trainer_id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course trainers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course trainer: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
