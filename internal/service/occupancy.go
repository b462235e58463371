package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/storage"
	"go.uber.org/zap"
)

// OccupancyCalculator считает занятость тренера за день
type OccupancyCalculator struct {
	store  storage.Store
	roster TrainerRoster
	logger *zap.Logger
}

func NewOccupancyCalculator(store storage.Store, roster TrainerRoster, logger *zap.Logger) *OccupancyCalculator {
	return &OccupancyCalculator{
		store:  store,
		roster: roster,
		logger: logger,
	}
}

// OccupiedHours сумма часов назначений и индивидуальных занятий тренера в date
func (c *OccupancyCalculator) OccupiedHours(ctx context.Context, trainerID int64, date time.Time) (float64, error) {
	day, err := c.load(ctx, trainerID, date)
	if err != nil {
		return 0, err
	}

	hours := day.occupiedHours(date)

	c.logger.Debug("Calculated occupied hours",
		zap.Int64("trainer_id", trainerID),
		zap.String("date", date.Format(model.DateLayout)),
		zap.Float64("hours", hours),
	)

	return hours, nil
}

// OccupiedSlots занятые интервалы тренера в date, по возрастанию начала
func (c *OccupancyCalculator) OccupiedSlots(ctx context.Context, trainerID int64, date time.Time) ([]model.OccupiedSlot, error) {
	day, err := c.load(ctx, trainerID, date)
	if err != nil {
		return nil, err
	}

	return day.occupiedSlots(date), nil
}

func (c *OccupancyCalculator) load(ctx context.Context, trainerID int64, date time.Time) (commitments, error) {
	if err := requireTrainer(ctx, c.roster, trainerID); err != nil {
		return commitments{}, err
	}

	return loadCommitments(ctx, c.store.Repos(), trainerID, model.DateRange{Start: date, End: date})
}

func (c commitments) occupiedHours(date time.Time) float64 {
	var total time.Duration
	for _, a := range c.assignments {
		if a.ActiveOn(date) {
			total += a.Duration
		}
	}
	for _, p := range c.personal {
		if p.ActiveOn(date) {
			total += model.PersonalSlotDuration
		}
	}
	return total.Hours()
}

// occupiedSlots сначала назначения, затем индивидуальные занятия;
// при равном начале сохраняется этот порядок
func (c commitments) occupiedSlots(date time.Time) []model.OccupiedSlot {
	slots := make([]model.OccupiedSlot, 0, len(c.assignments)+len(c.personal))

	for _, a := range c.assignments {
		if !a.ActiveOn(date) {
			continue
		}
		slots = append(slots, model.OccupiedSlot{
			Start:      a.StartTime,
			End:        a.EndTime,
			CourseName: a.CourseName,
			IsGroup:    a.IsGroup,
		})
	}

	for _, p := range c.personal {
		if !p.ActiveOn(date) {
			continue
		}
		window := p.Window()
		slots = append(slots, model.OccupiedSlot{
			Start:      window.Start,
			End:        window.End,
			CourseName: p.CourseName,
			IsGroup:    p.IsGroup,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start < slots[j].Start
	})

	return slots
}

func requireTrainer(ctx context.Context, roster TrainerRoster, trainerID int64) error {
	trainer, err := roster.GetTrainer(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("get trainer: %w", err)
	}
	if trainer == nil {
		return fmt.Errorf("%w: trainer %d", ErrNotFound, trainerID)
	}
	return nil
}
