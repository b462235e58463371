package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/notify"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultHoldHistoryRetention срок хранения истории заявок
const DefaultHoldHistoryRetention = 90 * 24 * time.Hour

// HoldService заявки на заморозку индивидуальных курсов.
//
// PENDING -> APPROVED | REJECTED. Решение, изменение записи студента,
// запись в историю и удаление заявки выполняются одной транзакцией.
type HoldService struct {
	store    storage.Store
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewHoldService(store storage.Store, notifier notify.Notifier, logger *zap.Logger) *HoldService {
	return &HoldService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateHoldInput struct {
	PersonalSlotID int64
	StartDate      time.Time
	EndDate        time.Time
	Reason         string
	RequestedBy    int64
}

// Create создаёт заявку в статусе PENDING
func (s *HoldService) Create(ctx context.Context, in CreateHoldInput) (*model.CourseHold, error) {
	dates := model.DateRange{Start: model.DateOf(in.StartDate), End: model.DateOf(in.EndDate)}
	if !dates.Valid() {
		return nil, fmt.Errorf("%w: hold end date is before start date", ErrInvalidInput)
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: hold reason is required", ErrInvalidInput)
	}

	repos := s.store.Repos()

	slot, err := repos.PersonalSlots.GetByID(ctx, in.PersonalSlotID)
	if err != nil {
		return nil, fmt.Errorf("get personal slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: personal slot %d", ErrNotFound, in.PersonalSlotID)
	}

	if err := requireUser(ctx, repos, in.RequestedBy); err != nil {
		return nil, err
	}

	requestedBy := in.RequestedBy
	hold := &model.CourseHold{
		PersonalSlotID: slot.ID,
		StartDate:      dates.Start,
		EndDate:        dates.End,
		Reason:         reason,
		Status:         model.HoldStatusPending,
		RequestedBy:    &requestedBy,
	}

	if err := repos.Holds.Create(ctx, hold); err != nil {
		return nil, fmt.Errorf("create hold: %w", err)
	}

	s.logger.Info("Course hold requested",
		zap.Int64("hold_id", hold.ID),
		zap.Int64("personal_slot_id", slot.ID),
		zap.Int64("requested_by", requestedBy),
		zap.String("start_date", dates.Start.Format(model.DateLayout)),
		zap.String("end_date", dates.End.Format(model.DateLayout)),
	)

	return hold, nil
}

// Approve одобряет заявку: продлевает курс на длину заморозки и снимает тренера.
// Повторный вызов и вызов для уже обработанной заявки ничего не меняют
// (applied == false).
func (s *HoldService) Approve(ctx context.Context, holdID, approverID int64) (bool, error) {
	return s.decide(ctx, holdID, approverID, model.HoldStatusApproved)
}

// Reject отклоняет заявку без изменения записи студента
func (s *HoldService) Reject(ctx context.Context, holdID, rejectorID int64) (bool, error) {
	return s.decide(ctx, holdID, rejectorID, model.HoldStatusRejected)
}

func (s *HoldService) decide(ctx context.Context, holdID, actorID int64, status model.HoldStatus) (bool, error) {
	var (
		history *model.CourseHoldHistory
		student *model.User
		newEnd  time.Time
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		if err := requireUser(ctx, repos, actorID); err != nil {
			return err
		}

		hold, err := repos.Holds.GetForUpdate(ctx, holdID)
		if err != nil {
			return fmt.Errorf("get hold: %w", err)
		}
		if hold == nil {
			return s.alreadyProcessed(ctx, repos, holdID)
		}
		if !hold.IsPending() {
			s.logger.Info("Hold is not pending, skipping",
				zap.Int64("hold_id", holdID),
				zap.String("status", string(hold.Status)),
				zap.NamedError("reason", ErrInvalidStateTransition),
			)
			return nil
		}

		slot, err := repos.PersonalSlots.GetByID(ctx, hold.PersonalSlotID)
		if err != nil {
			return fmt.Errorf("get personal slot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("%w: personal slot %d", ErrNotFound, hold.PersonalSlotID)
		}

		hold.Status = status
		hold.ApprovedBy = &actorID
		hold.Processed = true
		if err := repos.Holds.UpdateStatus(ctx, hold); err != nil {
			return fmt.Errorf("update hold status: %w", err)
		}

		if status == model.HoldStatusApproved {
			newEnd = model.AddDays(slot.EndDate, hold.ExtensionDays())
			// Студент возвращается в пул без тренера
			if err := repos.PersonalSlots.UpdateSchedule(ctx, slot.ID, newEnd, nil); err != nil {
				return fmt.Errorf("apply hold: %w", err)
			}
		}

		history = &model.CourseHoldHistory{
			ID:             uuid.New(),
			HoldID:         hold.ID,
			PersonalSlotID: slot.ID,
			StudentID:      slot.StudentID,
			StartDate:      hold.StartDate,
			EndDate:        hold.EndDate,
			Reason:         hold.Reason,
			Status:         status,
		}
		if err := repos.Holds.CreateHistory(ctx, history); err != nil {
			return fmt.Errorf("create hold history: %w", err)
		}

		if err := repos.Holds.Delete(ctx, hold.ID); err != nil {
			return fmt.Errorf("delete processed hold: %w", err)
		}

		student, err = repos.Users.GetByID(ctx, slot.StudentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	if history == nil {
		return false, nil
	}

	fields := []zap.Field{
		zap.Int64("hold_id", holdID),
		zap.Int64("actor_id", actorID),
		zap.Int64("personal_slot_id", history.PersonalSlotID),
		zap.String("status", string(status)),
	}
	if status == model.HoldStatusApproved {
		fields = append(fields, zap.String("new_end_date", newEnd.Format(model.DateLayout)))
	}
	s.logger.Info("Course hold processed", fields...)

	s.notifyDecision(ctx, student, history, newEnd)

	return true, nil
}

// alreadyProcessed заявки нет в живой таблице: если она есть в истории,
// это повтор и no-op, иначе заявка неизвестна
func (s *HoldService) alreadyProcessed(ctx context.Context, repos storage.Repositories, holdID int64) error {
	past, err := repos.Holds.GetHistoryByHoldID(ctx, holdID)
	if err != nil {
		return fmt.Errorf("get hold history: %w", err)
	}
	if past == nil {
		return fmt.Errorf("%w: course hold %d", ErrNotFound, holdID)
	}

	s.logger.Info("Hold already processed, skipping",
		zap.Int64("hold_id", holdID),
		zap.String("status", string(past.Status)),
	)
	return nil
}

func (s *HoldService) notifyDecision(ctx context.Context, student *model.User, h *model.CourseHoldHistory, newEnd time.Time) {
	if student == nil {
		return
	}

	period := h.StartDate.Format(model.DateLayout) + " – " + h.EndDate.Format(model.DateLayout)

	var (
		kind notify.Kind
		text string
	)
	if h.Status == model.HoldStatusApproved {
		kind = notify.KindHoldApproved
		text = fmt.Sprintf("Заморозка курса на %s одобрена. Курс продлён до %s.", period, newEnd.Format(model.DateLayout))
	} else {
		kind = notify.KindHoldRejected
		text = fmt.Sprintf("Заявка на заморозку курса на %s отклонена.", period)
	}

	// Уведомление не часть транзакции: ошибка только логируется
	if err := s.notifier.Notify(ctx, student, kind, text); err != nil {
		s.logger.Error("Failed to notify student about hold decision",
			zap.Int64("student_id", student.ID),
			zap.Int64("hold_id", h.HoldID),
			zap.Error(err),
		)
	}
}

// ListPending необработанные заявки
func (s *HoldService) ListPending(ctx context.Context) ([]*model.CourseHold, error) {
	return s.store.Repos().Holds.ListPending(ctx)
}

// ListActive одобренные заморозки, действующие в date
func (s *HoldService) ListActive(ctx context.Context, date time.Time) ([]*model.CourseHoldHistory, error) {
	return s.store.Repos().Holds.ListApprovedOn(ctx, model.DateOf(date))
}

// History история заявок. studentID == nil - по всем студентам.
func (s *HoldService) History(ctx context.Context, studentID *int64) ([]*model.CourseHoldHistory, error) {
	return s.store.Repos().Holds.ListHistory(ctx, studentID)
}

// PurgeHistory удаляет историю старше retention
func (s *HoldService) PurgeHistory(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", ErrInvalidInput)
	}

	cutoff := s.now().Add(-retention)
	deleted, err := s.store.Repos().Holds.DeleteHistoryBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Course hold history purged",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted),
	)

	return deleted, nil
}

func requireUser(ctx context.Context, repos storage.Repositories, userID int64) error {
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}
