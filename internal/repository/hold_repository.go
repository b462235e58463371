package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/repository/base"
)

// HoldRepository управляет заявками на заморозку (course_holds) и их историей
type HoldRepository struct {
	*base.Repository
}

func NewHoldRepository(db base.Querier) *HoldRepository {
	return &HoldRepository{Repository: base.NewRepository(db)}
}

const holdColumns = `
	id, personal_slot_id, start_date, end_date, reason, status,
	requested_by, approved_by, processed, created_at, updated_at
`

func scanHold(row interface{ Scan(dest ...any) error }) (*model.CourseHold, error) {
	var hold model.CourseHold
	err := row.Scan(
		&hold.ID,
		&hold.PersonalSlotID,
		&hold.StartDate,
		&hold.EndDate,
		&hold.Reason,
		&hold.Status,
		&hold.RequestedBy,
		&hold.ApprovedBy,
		&hold.Processed,
		&hold.CreatedAt,
		&hold.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

// Create создаёт заявку
func (r *HoldRepository) Create(ctx context.Context, hold *model.CourseHold) error {
	query := `
		INSERT INTO course_holds (personal_slot_id, start_date, end_date, reason, status, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		hold.PersonalSlotID,
		hold.StartDate,
		hold.EndDate,
		hold.Reason,
		hold.Status,
		hold.RequestedBy,
	).Scan(&hold.ID, &hold.CreatedAt, &hold.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create course hold: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *HoldRepository) GetByID(ctx context.Context, id int64) (*model.CourseHold, error) {
	hold, err := scanHold(r.QueryRow(ctx, `SELECT `+holdColumns+` FROM course_holds WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course hold by id: %w", err)
	}

	return hold, nil
}

// GetForUpdate получает заявку и блокирует строку до конца транзакции
func (r *HoldRepository) GetForUpdate(ctx context.Context, id int64) (*model.CourseHold, error) {
	hold, err := scanHold(r.QueryRow(ctx, `SELECT `+holdColumns+` FROM course_holds WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock course hold: %w", err)
	}

	return hold, nil
}

// ListPending получает необработанные заявки
func (r *HoldRepository) ListPending(ctx context.Context) ([]*model.CourseHold, error) {
	query := `SELECT ` + holdColumns + ` FROM course_holds WHERE processed = FALSE ORDER BY created_at, id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending holds: %w", err)
	}
	defer rows.Close()

	var holds []*model.CourseHold
	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course hold: %w", err)
		}
		holds = append(holds, hold)
	}

	return holds, rows.Err()
}

// UpdateStatus сохраняет статус, решение и флаг обработки
func (r *HoldRepository) UpdateStatus(ctx context.Context, hold *model.CourseHold) error {
	query := `
		UPDATE course_holds
		SET status = $1, approved_by = $2, processed = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, hold.Status, hold.ApprovedBy, hold.Processed, hold.ID).Scan(&hold.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("course hold not found")
		}
		return fmt.Errorf("update course hold status: %w", err)
	}

	return nil
}

// Delete удаляет заявку
func (r *HoldRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM course_holds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course hold: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("course hold not found")
	}

	return nil
}

const historyColumns = `
	id, hold_id, personal_slot_id, student_id, start_date, end_date, reason, status, created_at
`

func scanHistory(row interface{ Scan(dest ...any) error }) (*model.CourseHoldHistory, error) {
	var h model.CourseHoldHistory
	err := row.Scan(
		&h.ID,
		&h.HoldID,
		&h.PersonalSlotID,
		&h.StudentID,
		&h.StartDate,
		&h.EndDate,
		&h.Reason,
		&h.Status,
		&h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHistory записывает историю обработанной заявки
func (r *HoldRepository) CreateHistory(ctx context.Context, h *model.CourseHoldHistory) error {
	query := `
		INSERT INTO course_hold_history (id, hold_id, personal_slot_id, student_id, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		h.ID,
		h.HoldID,
		h.PersonalSlotID,
		h.StudentID,
		h.StartDate,
		h.EndDate,
		h.Reason,
		h.Status,
	).Scan(&h.CreatedAt)

	if err != nil {
		return fmt.Errorf("create course hold history: %w", err)
	}

	return nil
}

// GetHistoryByHoldID получает историю по ID исходной заявки
func (r *HoldRepository) GetHistoryByHoldID(ctx context.Context, holdID int64) (*model.CourseHoldHistory, error) {
	h, err := scanHistory(r.QueryRow(ctx, `SELECT `+historyColumns+` FROM course_hold_history WHERE hold_id = $1`, holdID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course hold history: %w", err)
	}

	return h, nil
}

// ListHistory получает историю заявок, новые первыми. studentID == nil - по всем студентам.
func (r *HoldRepository) ListHistory(ctx context.Context, studentID *int64) ([]*model.CourseHoldHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM course_hold_history
		WHERE $1::BIGINT IS NULL OR student_id = $1
		ORDER BY created_at DESC, hold_id DESC
	`

	return r.listHistory(ctx, "list course hold history", query, studentID)
}

// ListApprovedOn получает одобренные заморозки, действующие в указанную дату
func (r *HoldRepository) ListApprovedOn(ctx context.Context, date time.Time) ([]*model.CourseHoldHistory, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM course_hold_history
		WHERE status = 'APPROVED'
		  AND start_date <= $1
		  AND end_date >= $1
		ORDER BY hold_id
	`

	return r.listHistory(ctx, "list active holds", query, model.DateOf(date))
}

// DeleteHistoryBefore удаляет историю старше cutoff
func (r *HoldRepository) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM course_hold_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge course hold history: %w", err)
	}
	return affected, nil
}

func (r *HoldRepository) listHistory(ctx context.Context, op, query string, args ...any) ([]*model.CourseHoldHistory, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var history []*model.CourseHoldHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course hold history: %w", err)
		}
		history = append(history, h)
	}

	return history, rows.Err()
}
