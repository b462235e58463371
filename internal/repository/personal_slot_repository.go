package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgtype"
)

// PersonalSlotRepository управляет записями студентов на индивидуальные курсы (student_courses)
type PersonalSlotRepository struct {
	*base.Repository
}

func NewPersonalSlotRepository(db base.Querier) *PersonalSlotRepository {
	return &PersonalSlotRepository{Repository: base.NewRepository(db)}
}

const personalSlotSelect = `
	SELECT sc.id, sc.student_id, sc.course_id, sc.trainer_id, sc.start_date, sc.end_date,
	       sc.class_time, sc.created_at, c.name, c.is_group_class
	FROM student_courses sc
	JOIN courses c ON c.id = sc.course_id
`

func scanPersonalSlot(row interface{ Scan(dest ...any) error }) (*model.PersonalSlot, error) {
	var (
		slot      model.PersonalSlot
		classTime pgtype.Time
	)
	err := row.Scan(
		&slot.ID,
		&slot.StudentID,
		&slot.CourseID,
		&slot.TrainerID,
		&slot.StartDate,
		&slot.EndDate,
		&classTime,
		&slot.CreatedAt,
		&slot.CourseName,
		&slot.IsGroup,
	)
	if err != nil {
		return nil, err
	}
	slot.ClassTime = model.TimeOfDay(base.MinutesOf(classTime))

	return &slot, nil
}

// Create создаёт запись студента на курс
func (r *PersonalSlotRepository) Create(ctx context.Context, slot *model.PersonalSlot) error {
	query := `
		INSERT INTO student_courses (student_id, course_id, trainer_id, start_date, end_date, class_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.StudentID,
		slot.CourseID,
		slot.TrainerID,
		slot.StartDate,
		slot.EndDate,
		base.TimeParam(int(slot.ClassTime)),
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create personal slot: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *PersonalSlotRepository) GetByID(ctx context.Context, id int64) (*model.PersonalSlot, error) {
	slot, err := scanPersonalSlot(r.QueryRow(ctx, personalSlotSelect+` WHERE sc.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get personal slot by id: %w", err)
	}

	return slot, nil
}

// ListByTrainer получает записи тренера, действующие в диапазоне дат
func (r *PersonalSlotRepository) ListByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]*model.PersonalSlot, error) {
	query := personalSlotSelect + `
		WHERE sc.trainer_id = $1
		  AND sc.start_date <= $3
		  AND sc.end_date >= $2
		ORDER BY sc.class_time, sc.id
	`

	return r.list(ctx, "list personal slots by trainer", query, trainerID, model.DateOf(from), model.DateOf(to))
}

// ListByCourse получает записи на курс, действующие в диапазоне дат
func (r *PersonalSlotRepository) ListByCourse(ctx context.Context, courseID int64, from, to time.Time) ([]*model.PersonalSlot, error) {
	query := personalSlotSelect + `
		WHERE sc.course_id = $1
		  AND sc.start_date <= $3
		  AND sc.end_date >= $2
		ORDER BY sc.start_date, sc.class_time, sc.id
	`

	return r.list(ctx, "list personal slots by course", query, courseID, model.DateOf(from), model.DateOf(to))
}

// ListEndingBetween получает записи, у которых курс заканчивается в диапазоне дат
func (r *PersonalSlotRepository) ListEndingBetween(ctx context.Context, from, to time.Time) ([]*model.PersonalSlot, error) {
	query := personalSlotSelect + `
		WHERE sc.end_date >= $1
		  AND sc.end_date <= $2
		ORDER BY sc.end_date, sc.id
	`

	return r.list(ctx, "list ending personal slots", query, model.DateOf(from), model.DateOf(to))
}

// UpdateSchedule обновляет дату окончания и тренера записи
func (r *PersonalSlotRepository) UpdateSchedule(ctx context.Context, id int64, endDate time.Time, trainerID *int64) error {
	query := `
		UPDATE student_courses
		SET end_date = $1, trainer_id = $2
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, model.DateOf(endDate), trainerID, id)
	if err != nil {
		return fmt.Errorf("update personal slot: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("personal slot not found")
	}

	return nil
}

func (r *PersonalSlotRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.PersonalSlot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.PersonalSlot
	for rows.Next() {
		slot, err := scanPersonalSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan personal slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}
