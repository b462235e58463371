package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GroupAssignmentDays на сколько дней вперёд создаются назначения группового курса
const GroupAssignmentDays = 365

// CommitmentService создание и изменение занятий тренеров.
// Все записи проверяют пересечения внутри транзакции под блокировкой тренера.
type CommitmentService struct {
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewCommitmentService(store storage.Store, logger *zap.Logger) *CommitmentService {
	return &CommitmentService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

type CreateAssignmentInput struct {
	TrainerID      int64
	CourseID       int64
	PersonalSlotID *int64
	StartDate      time.Time
	EndDate        time.Time
	StartTime      model.TimeOfDay
	EndTime        model.TimeOfDay
	// Duration 0 - вычислить из StartTime и EndTime
	Duration time.Duration
}

// CreateAssignment создаёт назначение тренера на курс
func (s *CommitmentService) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*model.AssignmentSlot, error) {
	rng, err := dayRange(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	dates, err := dateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if in.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}

	slot := &model.AssignmentSlot{
		GroupID:   uuid.New(),
		TrainerID: in.TrainerID,
		CourseID:  in.CourseID,
		StartDate: dates.Start,
		EndDate:   dates.End,
		StartTime: rng.Start,
		EndTime:   rng.End,
		Duration:  in.Duration,
	}
	if slot.Duration == 0 {
		slot.DeriveDuration()
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		if err := requireTrainerProfile(ctx, repos, in.TrainerID); err != nil {
			return err
		}

		course, err := getCourse(ctx, repos, in.CourseID)
		if err != nil {
			return err
		}

		var excludePersonal int64
		if course.IsGroupClass {
			// Групповые назначения не привязаны к записи студента
			if err := repos.Courses.AddTrainer(ctx, course.ID, in.TrainerID); err != nil {
				return fmt.Errorf("add course trainer: %w", err)
			}
		} else if in.PersonalSlotID != nil {
			personal, err := repos.PersonalSlots.GetByID(ctx, *in.PersonalSlotID)
			if err != nil {
				return fmt.Errorf("get personal slot: %w", err)
			}
			if personal == nil {
				return fmt.Errorf("%w: personal slot %d", ErrNotFound, *in.PersonalSlotID)
			}
			id := personal.ID
			slot.PersonalSlotID = &id
			excludePersonal = id
		}

		if err := repos.Assignments.LockTrainer(ctx, in.TrainerID); err != nil {
			return fmt.Errorf("lock trainer: %w", err)
		}
		if err := requireNoConflict(ctx, repos, in.TrainerID, dates, rng, 0, excludePersonal); err != nil {
			return err
		}

		if err := repos.Assignments.Create(ctx, slot); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assignment created",
		zap.Int64("assignment_id", slot.ID),
		zap.Int64("trainer_id", slot.TrainerID),
		zap.Int64("course_id", slot.CourseID),
		zap.String("slot", rng.String()),
		zap.Duration("duration", slot.Duration),
	)

	return slot, nil
}

// UpdateAssignmentTimes меняет время назначения и пересчитывает длительность
func (s *CommitmentService) UpdateAssignmentTimes(ctx context.Context, assignmentID int64, start, end model.TimeOfDay) (*model.AssignmentSlot, error) {
	rng, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}

	var slot *model.AssignmentSlot
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		slot, err = repos.Assignments.GetByID(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("get assignment: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("%w: assignment %d", ErrNotFound, assignmentID)
		}

		if err := repos.Assignments.LockTrainer(ctx, slot.TrainerID); err != nil {
			return fmt.Errorf("lock trainer: %w", err)
		}

		var excludePersonal int64
		if slot.PersonalSlotID != nil {
			excludePersonal = *slot.PersonalSlotID
		}
		if err := requireNoConflict(ctx, repos, slot.TrainerID, slot.Dates(), rng, slot.ID, excludePersonal); err != nil {
			return err
		}

		slot.StartTime = rng.Start
		slot.EndTime = rng.End
		slot.DeriveDuration()

		if err := repos.Assignments.UpdateTimes(ctx, slot); err != nil {
			return fmt.Errorf("update assignment times: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assignment times updated",
		zap.Int64("assignment_id", slot.ID),
		zap.String("slot", rng.String()),
	)

	return slot, nil
}

// GroupTrainerInput тренер группового курса и его ежедневное время
type GroupTrainerInput struct {
	TrainerID int64           `json:"trainer_id"`
	StartTime model.TimeOfDay `json:"start_time"`
	EndTime   model.TimeOfDay `json:"end_time"`
}

// AssignGroupTrainers заменяет все назначения группового курса новыми на год
// вперёд с общим GroupID. Либо создаются все назначения, либо ни одного.
func (s *CommitmentService) AssignGroupTrainers(ctx context.Context, courseID int64, trainers []GroupTrainerInput) ([]*model.AssignmentSlot, error) {
	if len(trainers) == 0 {
		return nil, fmt.Errorf("%w: at least one trainer is required", ErrInvalidInput)
	}

	ranges := make([]model.TimeRange, len(trainers))
	for i, t := range trainers {
		rng, err := dayRange(t.StartTime, t.EndTime)
		if err != nil {
			return nil, err
		}
		ranges[i] = rng
	}

	today := model.DateOf(s.now())
	dates := model.DateRange{Start: today, End: model.AddDays(today, GroupAssignmentDays)}
	groupID := uuid.New()

	var created []*model.AssignmentSlot
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		course, err := getCourse(ctx, repos, courseID)
		if err != nil {
			return err
		}
		if !course.IsGroupClass {
			return fmt.Errorf("%w: course %d is not a group course", ErrInvalidInput, courseID)
		}

		deleted, err := repos.Assignments.DeleteByCourse(ctx, courseID)
		if err != nil {
			return fmt.Errorf("delete course assignments: %w", err)
		}
		s.logger.Debug("Previous course assignments removed",
			zap.Int64("course_id", courseID),
			zap.Int64("deleted", deleted),
		)

		trainerIDs := make([]int64, 0, len(trainers))
		seen := make(map[int64]bool, len(trainers))

		for i, t := range trainers {
			if err := requireTrainerProfile(ctx, repos, t.TrainerID); err != nil {
				return err
			}
			if err := repos.Assignments.LockTrainer(ctx, t.TrainerID); err != nil {
				return fmt.Errorf("lock trainer: %w", err)
			}
			if err := requireNoConflict(ctx, repos, t.TrainerID, dates, ranges[i], 0, 0); err != nil {
				return err
			}

			slot := &model.AssignmentSlot{
				GroupID:   groupID,
				TrainerID: t.TrainerID,
				CourseID:  courseID,
				StartDate: dates.Start,
				EndDate:   dates.End,
				StartTime: ranges[i].Start,
				EndTime:   ranges[i].End,
			}
			slot.DeriveDuration()

			if err := repos.Assignments.Create(ctx, slot); err != nil {
				return fmt.Errorf("create assignment: %w", err)
			}
			created = append(created, slot)

			if !seen[t.TrainerID] {
				seen[t.TrainerID] = true
				trainerIDs = append(trainerIDs, t.TrainerID)
			}
		}

		if err := repos.Courses.SetTrainers(ctx, courseID, trainerIDs); err != nil {
			return fmt.Errorf("set course trainers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Group course trainers assigned",
		zap.Int64("course_id", courseID),
		zap.String("group_id", groupID.String()),
		zap.Int("assignments", len(created)),
	)

	return created, nil
}

type EnrollInput struct {
	StudentID int64
	CourseID  int64
	TrainerID *int64
	StartDate time.Time
	EndDate   time.Time
	ClassTime model.TimeOfDay
}

// EnrollPersonalSlot записывает студента на курс с ежедневным часовым занятием.
// Для групповых курсов тренер не сохраняется.
func (s *CommitmentService) EnrollPersonalSlot(ctx context.Context, in EnrollInput) (*model.PersonalSlot, error) {
	window, err := dayRange(in.ClassTime, in.ClassTime.Add(model.PersonalSlotDuration))
	if err != nil {
		return nil, err
	}
	dates, err := dateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	slot := &model.PersonalSlot{
		StudentID: in.StudentID,
		CourseID:  in.CourseID,
		StartDate: dates.Start,
		EndDate:   dates.End,
		ClassTime: window.Start,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		if err := requireUser(ctx, repos, in.StudentID); err != nil {
			return err
		}

		course, err := getCourse(ctx, repos, in.CourseID)
		if err != nil {
			return err
		}

		if in.TrainerID != nil && !course.IsGroupClass {
			trainerID := *in.TrainerID
			if err := requireTrainerProfile(ctx, repos, trainerID); err != nil {
				return err
			}
			if err := repos.Assignments.LockTrainer(ctx, trainerID); err != nil {
				return fmt.Errorf("lock trainer: %w", err)
			}
			if err := requireNoConflict(ctx, repos, trainerID, dates, window, 0, 0); err != nil {
				return err
			}
			slot.TrainerID = &trainerID
		}

		if err := repos.PersonalSlots.Create(ctx, slot); err != nil {
			return fmt.Errorf("create personal slot: %w", err)
		}
		slot.CourseName = course.Name
		slot.IsGroup = course.IsGroupClass
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student enrolled",
		zap.Int64("personal_slot_id", slot.ID),
		zap.Int64("student_id", slot.StudentID),
		zap.Int64("course_id", slot.CourseID),
		zap.Bool("has_trainer", slot.HasTrainer()),
	)

	return slot, nil
}

// ReassignTrainer назначает другого тренера на индивидуальный курс
func (s *CommitmentService) ReassignTrainer(ctx context.Context, personalSlotID, trainerID int64) (*model.PersonalSlot, error) {
	var slot *model.PersonalSlot
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		var err error
		slot, err = getPersonalSlot(ctx, repos, personalSlotID)
		if err != nil {
			return err
		}
		if slot.IsGroup {
			return fmt.Errorf("%w: group course enrolments have no personal trainer", ErrInvalidInput)
		}

		if err := requireTrainerProfile(ctx, repos, trainerID); err != nil {
			return err
		}
		if err := repos.Assignments.LockTrainer(ctx, trainerID); err != nil {
			return fmt.Errorf("lock trainer: %w", err)
		}
		if err := requireNoConflict(ctx, repos, trainerID, slot.Dates(), slot.Window(), 0, slot.ID); err != nil {
			return err
		}

		if err := repos.PersonalSlots.UpdateSchedule(ctx, slot.ID, slot.EndDate, &trainerID); err != nil {
			return fmt.Errorf("update personal slot: %w", err)
		}
		slot.TrainerID = &trainerID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Personal trainer reassigned",
		zap.Int64("personal_slot_id", slot.ID),
		zap.Int64("trainer_id", trainerID),
	)

	return slot, nil
}

// ExtendCourse переносит дату окончания курса на более позднюю
func (s *CommitmentService) ExtendCourse(ctx context.Context, personalSlotID int64, newEnd time.Time) (*model.PersonalSlot, error) {
	newEnd = model.DateOf(newEnd)
	today := model.DateOf(s.now())
	if newEnd.Before(today) {
		return nil, fmt.Errorf("%w: new end date is in the past", ErrInvalidInput)
	}

	var slot *model.PersonalSlot
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos storage.Repositories) error {
		var err error
		slot, err = getPersonalSlot(ctx, repos, personalSlotID)
		if err != nil {
			return err
		}
		if !newEnd.After(slot.EndDate) {
			return fmt.Errorf("%w: new end date must be after %s", ErrInvalidInput, slot.EndDate.Format(model.DateLayout))
		}

		if slot.TrainerID != nil {
			trainerID := *slot.TrainerID
			if err := repos.Assignments.LockTrainer(ctx, trainerID); err != nil {
				return fmt.Errorf("lock trainer: %w", err)
			}
			// Проверяются только добавленные дни
			extension := model.DateRange{Start: model.AddDays(slot.EndDate, 1), End: newEnd}
			if err := requireNoConflict(ctx, repos, trainerID, extension, slot.Window(), 0, slot.ID); err != nil {
				return err
			}
		}

		if err := repos.PersonalSlots.UpdateSchedule(ctx, slot.ID, newEnd, slot.TrainerID); err != nil {
			return fmt.Errorf("update personal slot: %w", err)
		}
		slot.EndDate = newEnd
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course extended",
		zap.Int64("personal_slot_id", slot.ID),
		zap.String("end_date", newEnd.Format(model.DateLayout)),
	)

	return slot, nil
}

// dayRange интервал внутри одних суток
func dayRange(start, end model.TimeOfDay) (model.TimeRange, error) {
	rng := model.TimeRange{Start: start, End: end}
	if !start.Valid() || !end.Valid() {
		return model.TimeRange{}, fmt.Errorf("%w: time %s is outside 00:00-24:00", ErrInvalidInput, rng)
	}
	if rng.Empty() {
		return model.TimeRange{}, ErrInvalidInterval
	}
	return rng, nil
}

func dateRange(start, end time.Time) (model.DateRange, error) {
	dates := model.DateRange{Start: model.DateOf(start), End: model.DateOf(end)}
	if !dates.Valid() {
		return model.DateRange{}, fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	}
	return dates, nil
}

func requireTrainerProfile(ctx context.Context, repos storage.Repositories, trainerID int64) error {
	return requireTrainer(ctx, repos.Users, trainerID)
}

func getCourse(ctx context.Context, repos storage.Repositories, courseID int64) (*model.Course, error) {
	course, err := repos.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, fmt.Errorf("%w: course %d", ErrNotFound, courseID)
	}
	return course, nil
}

func getPersonalSlot(ctx context.Context, repos storage.Repositories, id int64) (*model.PersonalSlot, error) {
	slot, err := repos.PersonalSlots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get personal slot: %w", err)
	}
	if slot == nil {
		return nil, fmt.Errorf("%w: personal slot %d", ErrNotFound, id)
	}
	return slot, nil
}
