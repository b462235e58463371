package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
)

// AssignmentRepository управляет назначениями тренеров (trainer_assignments)
type AssignmentRepository struct {
	*base.Repository
}

func NewAssignmentRepository(db base.Querier) *AssignmentRepository {
	return &AssignmentRepository{Repository: base.NewRepository(db)}
}

const assignmentSelect = `
	SELECT a.id, a.group_id, a.trainer_id, a.course_id, a.personal_slot_id,
	       a.start_date, a.end_date, a.start_time, a.end_time, a.duration_minutes, a.created_at,
	       c.name, c.is_group_class,
	       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username)
	FROM trainer_assignments a
	JOIN courses c ON c.id = a.course_id
	JOIN users u ON u.id = a.trainer_id
`

func scanAssignment(row interface{ Scan(dest ...any) error }) (*model.AssignmentSlot, error) {
	var (
		slot            model.AssignmentSlot
		start, end      pgtype.Time
		durationMinutes int
	)
	err := row.Scan(
		&slot.ID,
		&slot.GroupID,
		&slot.TrainerID,
		&slot.CourseID,
		&slot.PersonalSlotID,
		&slot.StartDate,
		&slot.EndDate,
		&start,
		&end,
		&durationMinutes,
		&slot.CreatedAt,
		&slot.CourseName,
		&slot.IsGroup,
		&slot.TrainerName,
	)
	if err != nil {
		return nil, err
	}

	slot.StartTime = model.TimeOfDay(base.MinutesOf(start))
	slot.EndTime = model.TimeOfDay(base.MinutesOf(end))
	slot.Duration = time.Duration(durationMinutes) * time.Minute

	return &slot, nil
}

// Create создаёт новое назначение
func (r *AssignmentRepository) Create(ctx context.Context, slot *model.AssignmentSlot) error {
	query := `
		INSERT INTO trainer_assignments
			(group_id, trainer_id, course_id, personal_slot_id, start_date, end_date, start_time, end_time, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.GroupID,
		slot.TrainerID,
		slot.CourseID,
		slot.PersonalSlotID,
		slot.StartDate,
		slot.EndDate,
		base.TimeParam(int(slot.StartTime)),
		base.TimeParam(int(slot.EndTime)),
		int(slot.Duration/time.Minute),
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}

	return nil
}

// GetByID получает назначение по ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*model.AssignmentSlot, error) {
	slot, err := scanAssignment(r.QueryRow(ctx, assignmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment by id: %w", err)
	}

	return slot, nil
}

// UpdateTimes обновляет время и длительность назначения
func (r *AssignmentRepository) UpdateTimes(ctx context.Context, slot *model.AssignmentSlot) error {
	query := `
		UPDATE trainer_assignments
		SET start_time = $1, end_time = $2, duration_minutes = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(
		ctx, query,
		base.TimeParam(int(slot.StartTime)),
		base.TimeParam(int(slot.EndTime)),
		int(slot.Duration/time.Minute),
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("update assignment times: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("assignment not found")
	}

	return nil
}

// DeleteByCourse удаляет все назначения курса
func (r *AssignmentRepository) DeleteByCourse(ctx context.Context, courseID int64) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM trainer_assignments WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, fmt.Errorf("delete course assignments: %w", err)
	}
	return affected, nil
}

// ListByTrainer получает назначения тренера, действующие в диапазоне дат
func (r *AssignmentRepository) ListByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]*model.AssignmentSlot, error) {
	query := assignmentSelect + `
		WHERE a.trainer_id = $1
		  AND a.start_date <= $3
		  AND a.end_date >= $2
		ORDER BY a.start_time, a.id
	`

	return r.list(ctx, "list assignments by trainer", query, trainerID, model.DateOf(from), model.DateOf(to))
}

// ListByCourse получает назначения курса, действующие в диапазоне дат
func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID int64, from, to time.Time) ([]*model.AssignmentSlot, error) {
	query := assignmentSelect + `
		WHERE a.course_id = $1
		  AND a.start_date <= $3
		  AND a.end_date >= $2
		ORDER BY a.start_date, a.start_time, a.id
	`

	return r.list(ctx, "list assignments by course", query, courseID, model.DateOf(from), model.DateOf(to))
}

// LockTrainer берёт транзакционную advisory-блокировку на тренера.
// Вне транзакции блокировка снимается сразу после запроса.
func (r *AssignmentRepository) LockTrainer(ctx context.Context, trainerID int64) error {
	if _, err := r.ExecAffected(ctx, `SELECT pg_advisory_xact_lock($1)`, trainerID); err != nil {
		return fmt.Errorf("lock trainer assignments: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.AssignmentSlot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.AssignmentSlot
	for rows.Next() {
		slot, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}
