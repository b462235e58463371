// Package memory хранилище в памяти для тестов и локальной разработки.
//
// Транзакция держит эксклюзивную блокировку и работает с копией состояния:
// при ошибке копия отбрасывается, при успехе заменяет исходное состояние.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
)

type state struct {
	users          map[int64]*model.User
	trainers       map[int64]*model.Trainer
	courses        map[int64]*model.Course
	courseTrainers map[int64]map[int64]bool
	assignments    map[int64]*model.AssignmentSlot
	personalSlots  map[int64]*model.PersonalSlot
	holds          map[int64]*model.CourseHold
	history        []*model.CourseHoldHistory
	nextID         int64
}

func newState() *state {
	return &state{
		users:          make(map[int64]*model.User),
		trainers:       make(map[int64]*model.Trainer),
		courses:        make(map[int64]*model.Course),
		courseTrainers: make(map[int64]map[int64]bool),
		assignments:    make(map[int64]*model.AssignmentSlot),
		personalSlots:  make(map[int64]*model.PersonalSlot),
		holds:          make(map[int64]*model.CourseHold),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// clone глубокая копия для транзакции
func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.trainers {
		t := *v
		c.trainers[k] = &t
	}
	for k, v := range s.courses {
		cc := *v
		c.courses[k] = &cc
	}
	for k, v := range s.courseTrainers {
		set := make(map[int64]bool, len(v))
		for id := range v {
			set[id] = true
		}
		c.courseTrainers[k] = set
	}
	for k, v := range s.assignments {
		a := *v
		c.assignments[k] = &a
	}
	for k, v := range s.personalSlots {
		p := *v
		c.personalSlots[k] = &p
	}
	for k, v := range s.holds {
		h := *v
		c.holds[k] = &h
	}
	for _, v := range s.history {
		h := *v
		c.history = append(c.history, &h)
	}
	return c
}

// Store хранилище в памяти
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetClock подменяет часы для меток created_at
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// view доступ к состоянию: вне транзакции через мьютекс, внутри напрямую
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.st)
}

func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (v view) now() time.Time {
	return v.store.now()
}

func (v view) repos() storage.Repositories {
	return storage.Repositories{
		Users:         &userRepo{v: v},
		Courses:       &courseRepo{v: v},
		Assignments:   &assignmentRepo{v: v},
		PersonalSlots: &personalSlotRepo{v: v},
		Holds:         &holdRepo{v: v},
	}
}

// Repos репозитории вне транзакции
func (s *Store) Repos() storage.Repositories {
	return view{store: s}.repos()
}

// WithinTx выполняет fn атомарно относительно остальных операций хранилища
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos storage.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	if err := fn(ctx, view{store: s, tx: tx}.repos()); err != nil {
		return err
	}

	s.st = tx
	return nil
}

// AddUser добавляет пользователя; для роли TRAINER создаётся профиль тренера
func (s *Store) AddUser(u *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 {
		u.ID = s.st.id()
	} else if u.ID > s.st.nextID {
		s.st.nextID = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	stored := *u
	s.st.users[u.ID] = &stored

	if u.Role == model.RoleTrainer {
		if _, ok := s.st.trainers[u.ID]; !ok {
			s.st.trainers[u.ID] = &model.Trainer{UserID: u.ID, Name: u.FullName()}
		}
	}
	return u
}

// SetApprovedHours задаёт лимит часов тренера
func (s *Store) SetApprovedHours(trainerID int64, hours *int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.st.trainers[trainerID]; ok {
		t.ApprovedHours = hours
	}
}

// AddCourse добавляет курс
func (s *Store) AddCourse(c *model.Course) *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.st.id()
	} else if c.ID > s.st.nextID {
		s.st.nextID = c.ID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	stored := *c
	s.st.courses[c.ID] = &stored
	return c
}

var _ storage.Store = (*Store)(nil)
