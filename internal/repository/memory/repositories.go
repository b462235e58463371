package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
)

var errNotFound = errors.New("not found")

type userRepo struct{ v view }

func (r *userRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	var out *model.User
	r.v.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			c := *u
			out = &c
		}
	})
	return out, nil
}

func (r *userRepo) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	var out *model.User
	r.v.read(func(st *state) {
		for _, u := range st.users {
			if u.TelegramID != nil && *u.TelegramID == telegramID {
				c := *u
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *userRepo) ListByRoles(_ context.Context, roles ...model.Role) ([]*model.User, error) {
	want := make(map[model.Role]bool, len(roles))
	for _, role := range roles {
		want[role] = true
	}

	var out []*model.User
	r.v.read(func(st *state) {
		for _, u := range st.users {
			if want[u.Role] {
				c := *u
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *userRepo) ListTrainers(_ context.Context) ([]*model.Trainer, error) {
	var out []*model.Trainer
	r.v.read(func(st *state) {
		for _, t := range st.trainers {
			c := *t
			out = append(out, &c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *userRepo) GetTrainer(_ context.Context, userID int64) (*model.Trainer, error) {
	var out *model.Trainer
	r.v.read(func(st *state) {
		if t, ok := st.trainers[userID]; ok {
			c := *t
			out = &c
		}
	})
	return out, nil
}

type courseRepo struct{ v view }

func (r *courseRepo) GetByID(_ context.Context, id int64) (*model.Course, error) {
	var out *model.Course
	r.v.read(func(st *state) {
		if c, ok := st.courses[id]; ok {
			cc := *c
			out = &cc
		}
	})
	return out, nil
}

func (r *courseRepo) AddTrainer(_ context.Context, courseID, trainerID int64) error {
	return r.v.write(func(st *state) error {
		set, ok := st.courseTrainers[courseID]
		if !ok {
			set = make(map[int64]bool)
			st.courseTrainers[courseID] = set
		}
		set[trainerID] = true
		return nil
	})
}

func (r *courseRepo) SetTrainers(_ context.Context, courseID int64, trainerIDs []int64) error {
	return r.v.write(func(st *state) error {
		set := make(map[int64]bool, len(trainerIDs))
		for _, id := range trainerIDs {
			set[id] = true
		}
		st.courseTrainers[courseID] = set
		return nil
	})
}

func (r *courseRepo) ListTrainerIDs(_ context.Context, courseID int64) ([]int64, error) {
	var out []int64
	r.v.read(func(st *state) {
		for id := range st.courseTrainers[courseID] {
			out = append(out, id)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type assignmentRepo struct{ v view }

// decorate заполняет поля из связанных таблиц, как это делает JOIN в PostgreSQL
func decorateAssignment(st *state, a *model.AssignmentSlot) *model.AssignmentSlot {
	c := *a
	if course, ok := st.courses[a.CourseID]; ok {
		c.CourseName = course.Name
		c.IsGroup = course.IsGroupClass
	}
	if u, ok := st.users[a.TrainerID]; ok {
		c.TrainerName = u.FullName()
	}
	return &c
}

func (r *assignmentRepo) Create(_ context.Context, slot *model.AssignmentSlot) error {
	return r.v.write(func(st *state) error {
		slot.ID = st.id()
		slot.CreatedAt = r.v.now()
		stored := *slot
		st.assignments[slot.ID] = &stored
		return nil
	})
}

func (r *assignmentRepo) GetByID(_ context.Context, id int64) (*model.AssignmentSlot, error) {
	var out *model.AssignmentSlot
	r.v.read(func(st *state) {
		if a, ok := st.assignments[id]; ok {
			out = decorateAssignment(st, a)
		}
	})
	return out, nil
}

func (r *assignmentRepo) UpdateTimes(_ context.Context, slot *model.AssignmentSlot) error {
	return r.v.write(func(st *state) error {
		a, ok := st.assignments[slot.ID]
		if !ok {
			return errNotFound
		}
		a.StartTime = slot.StartTime
		a.EndTime = slot.EndTime
		a.Duration = slot.Duration
		return nil
	})
}

func (r *assignmentRepo) DeleteByCourse(_ context.Context, courseID int64) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		for id, a := range st.assignments {
			if a.CourseID == courseID {
				delete(st.assignments, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *assignmentRepo) ListByTrainer(_ context.Context, trainerID int64, from, to time.Time) ([]*model.AssignmentSlot, error) {
	return r.list(func(a *model.AssignmentSlot) bool { return a.TrainerID == trainerID }, from, to, false), nil
}

func (r *assignmentRepo) ListByCourse(_ context.Context, courseID int64, from, to time.Time) ([]*model.AssignmentSlot, error) {
	return r.list(func(a *model.AssignmentSlot) bool { return a.CourseID == courseID }, from, to, true), nil
}

// LockTrainer в памяти не нужен: транзакция уже держит эксклюзивную блокировку
func (r *assignmentRepo) LockTrainer(context.Context, int64) error {
	return nil
}

func (r *assignmentRepo) list(match func(*model.AssignmentSlot) bool, from, to time.Time, byDate bool) []*model.AssignmentSlot {
	window := model.DateRange{Start: from, End: to}

	var out []*model.AssignmentSlot
	r.v.read(func(st *state) {
		for _, a := range st.assignments {
			if match(a) && a.Dates().Intersects(window) {
				out = append(out, decorateAssignment(st, a))
			}
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if byDate && !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type personalSlotRepo struct{ v view }

func decoratePersonalSlot(st *state, p *model.PersonalSlot) *model.PersonalSlot {
	c := *p
	if p.TrainerID != nil {
		id := *p.TrainerID
		c.TrainerID = &id
	}
	if course, ok := st.courses[p.CourseID]; ok {
		c.CourseName = course.Name
		c.IsGroup = course.IsGroupClass
	}
	return &c
}

func (r *personalSlotRepo) Create(_ context.Context, slot *model.PersonalSlot) error {
	return r.v.write(func(st *state) error {
		slot.ID = st.id()
		slot.CreatedAt = r.v.now()
		stored := *slot
		st.personalSlots[slot.ID] = &stored
		return nil
	})
}

func (r *personalSlotRepo) GetByID(_ context.Context, id int64) (*model.PersonalSlot, error) {
	var out *model.PersonalSlot
	r.v.read(func(st *state) {
		if p, ok := st.personalSlots[id]; ok {
			out = decoratePersonalSlot(st, p)
		}
	})
	return out, nil
}

func (r *personalSlotRepo) ListByTrainer(_ context.Context, trainerID int64, from, to time.Time) ([]*model.PersonalSlot, error) {
	window := model.DateRange{Start: from, End: to}
	return r.list(func(p *model.PersonalSlot) bool {
		return p.TrainerID != nil && *p.TrainerID == trainerID && p.Dates().Intersects(window)
	}), nil
}

func (r *personalSlotRepo) ListByCourse(_ context.Context, courseID int64, from, to time.Time) ([]*model.PersonalSlot, error) {
	window := model.DateRange{Start: from, End: to}
	return r.list(func(p *model.PersonalSlot) bool {
		return p.CourseID == courseID && p.Dates().Intersects(window)
	}), nil
}

func (r *personalSlotRepo) ListEndingBetween(_ context.Context, from, to time.Time) ([]*model.PersonalSlot, error) {
	window := model.DateRange{Start: from, End: to}
	return r.list(func(p *model.PersonalSlot) bool {
		return window.Contains(p.EndDate)
	}), nil
}

func (r *personalSlotRepo) UpdateSchedule(_ context.Context, id int64, endDate time.Time, trainerID *int64) error {
	return r.v.write(func(st *state) error {
		p, ok := st.personalSlots[id]
		if !ok {
			return errNotFound
		}
		p.EndDate = model.DateOf(endDate)
		if trainerID != nil {
			tid := *trainerID
			p.TrainerID = &tid
		} else {
			p.TrainerID = nil
		}
		return nil
	})
}

func (r *personalSlotRepo) list(match func(*model.PersonalSlot) bool) []*model.PersonalSlot {
	var out []*model.PersonalSlot
	r.v.read(func(st *state) {
		for _, p := range st.personalSlots {
			if match(p) {
				out = append(out, decoratePersonalSlot(st, p))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassTime != out[j].ClassTime {
			return out[i].ClassTime < out[j].ClassTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type holdRepo struct{ v view }

func (r *holdRepo) Create(_ context.Context, hold *model.CourseHold) error {
	return r.v.write(func(st *state) error {
		hold.ID = st.id()
		hold.CreatedAt = r.v.now()
		hold.UpdatedAt = hold.CreatedAt
		stored := *hold
		st.holds[hold.ID] = &stored
		return nil
	})
}

func (r *holdRepo) GetByID(_ context.Context, id int64) (*model.CourseHold, error) {
	var out *model.CourseHold
	r.v.read(func(st *state) {
		if h, ok := st.holds[id]; ok {
			c := *h
			out = &c
		}
	})
	return out, nil
}

func (r *holdRepo) GetForUpdate(ctx context.Context, id int64) (*model.CourseHold, error) {
	return r.GetByID(ctx, id)
}

func (r *holdRepo) ListPending(_ context.Context) ([]*model.CourseHold, error) {
	var out []*model.CourseHold
	r.v.read(func(st *state) {
		for _, h := range st.holds {
			if !h.Processed {
				c := *h
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *holdRepo) UpdateStatus(_ context.Context, hold *model.CourseHold) error {
	return r.v.write(func(st *state) error {
		h, ok := st.holds[hold.ID]
		if !ok {
			return errNotFound
		}
		h.Status = hold.Status
		h.ApprovedBy = hold.ApprovedBy
		h.Processed = hold.Processed
		h.UpdatedAt = r.v.now()
		hold.UpdatedAt = h.UpdatedAt
		return nil
	})
}

func (r *holdRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.holds[id]; !ok {
			return errNotFound
		}
		delete(st.holds, id)
		return nil
	})
}

func (r *holdRepo) CreateHistory(_ context.Context, h *model.CourseHoldHistory) error {
	return r.v.write(func(st *state) error {
		h.CreatedAt = r.v.now()
		stored := *h
		st.history = append(st.history, &stored)
		return nil
	})
}

func (r *holdRepo) GetHistoryByHoldID(_ context.Context, holdID int64) (*model.CourseHoldHistory, error) {
	var out *model.CourseHoldHistory
	r.v.read(func(st *state) {
		for _, h := range st.history {
			if h.HoldID == holdID {
				c := *h
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *holdRepo) ListHistory(_ context.Context, studentID *int64) ([]*model.CourseHoldHistory, error) {
	out := r.listHistory(func(h *model.CourseHoldHistory) bool {
		return studentID == nil || h.StudentID == *studentID
	})
	// Новые первыми
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].HoldID > out[j].HoldID
	})
	return out, nil
}

func (r *holdRepo) ListApprovedOn(_ context.Context, date time.Time) ([]*model.CourseHoldHistory, error) {
	out := r.listHistory(func(h *model.CourseHoldHistory) bool {
		return h.Status == model.HoldStatusApproved && h.Dates().Contains(date)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].HoldID < out[j].HoldID })
	return out, nil
}

func (r *holdRepo) DeleteHistoryBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.v.write(func(st *state) error {
		kept := st.history[:0]
		for _, h := range st.history {
			if h.CreatedAt.Before(cutoff) {
				n++
				continue
			}
			kept = append(kept, h)
		}
		st.history = kept
		return nil
	})
	return n, err
}

func (r *holdRepo) listHistory(match func(*model.CourseHoldHistory) bool) []*model.CourseHoldHistory {
	var out []*model.CourseHoldHistory
	r.v.read(func(st *state) {
		for _, h := range st.history {
			if match(h) {
				c := *h
				out = append(out, &c)
			}
		}
	})
	return out
}
