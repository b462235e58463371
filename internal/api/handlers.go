package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/trainer_scheduler/internal/model"
	"github.com/Freeeeeet/trainer_scheduler/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UserIDHeader заголовок с ID пользователя, от имени которого выполняется запрос
const UserIDHeader = "X-User-ID"

// Services сервисы, которые обслуживает REST API
type Services struct {
	Availability *service.AvailabilityService
	Occupancy    *service.OccupancyCalculator
	Commitments  *service.CommitmentService
	Schedule     *service.ScheduleService
	Holds        *service.HoldService
}

type Handler struct {
	svc      Services
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewHandler(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// ---------------------------------------------------------------------------
// Тренеры
// ---------------------------------------------------------------------------

// AvailableTrainers GET /api/trainers/available?class_time=HH:MM&duration=60&date=YYYY-MM-DD
func (h *Handler) AvailableTrainers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseTime(q.Get("class_time"), "class_time")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	duration, err := parseDuration(q.Get("duration"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	date, err := h.dateOrToday(q.Get("date"), "date")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.svc.Availability.QuerySingleDay(r.Context(), start, duration, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AvailableTrainersWeek GET /api/trainers/available/extended?start_time=HH:MM&duration=60&start_date=YYYY-MM-DD
func (h *Handler) AvailableTrainersWeek(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseTime(q.Get("start_time"), "start_time")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	duration, err := parseDuration(q.Get("duration"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	startDate, err := h.dateOrToday(q.Get("start_date"), "start_date")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.svc.Availability.QueryWeek(r.Context(), start, duration, startDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// TrainerTimeline GET /api/trainers/{id}/timeline?date=YYYY-MM-DD
func (h *Handler) TrainerTimeline(w http.ResponseWriter, r *http.Request) {
	trainerID, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	date, err := h.dateOrToday(r.URL.Query().Get("date"), "date")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	timeline, err := h.svc.Availability.DayTimeline(r.Context(), trainerID, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, timeline)
}

// TrainerOccupation GET /api/trainers/{id}/occupation?date=YYYY-MM-DD
func (h *Handler) TrainerOccupation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	trainerID, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	date, err := h.dateOrToday(r.URL.Query().Get("date"), "date")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	hours, err := h.svc.Occupancy.OccupiedHours(ctx, trainerID, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	slots, err := h.svc.Occupancy.OccupiedSlots(ctx, trainerID, date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, OccupationResponse{
		TrainerID:     trainerID,
		Date:          formatDate(date),
		OccupiedHours: hours,
		Slots:         slots,
	})
}

// TrainerSchedule GET /api/trainers/{id}/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) TrainerSchedule(w http.ResponseWriter, r *http.Request) {
	trainerID, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	from, to, err := h.period(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	schedule, err := h.svc.Schedule.TrainerSchedule(r.Context(), trainerID, from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// ---------------------------------------------------------------------------
// Назначения и курсы
// ---------------------------------------------------------------------------

// CreateAssignment POST /api/assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := service.CreateAssignmentInput{
		TrainerID:      req.TrainerID,
		CourseID:       req.CourseID,
		PersonalSlotID: req.PersonalSlotID,
	}

	var err error
	if in.StartDate, in.EndDate, err = parseDates(req.StartDate, req.EndDate); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if in.StartTime, err = parseTime(req.StartTime, "start_time"); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if in.EndTime, err = parseTime(req.EndTime, "end_time"); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if req.DurationMinutes != nil {
		in.Duration = time.Duration(*req.DurationMinutes) * time.Minute
	}

	slot, err := h.svc.Commitments.CreateAssignment(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

// UpdateAssignment PATCH /api/assignments/{id}
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req UpdateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, err := parseTime(req.StartTime, "start_time")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	end, err := parseTime(req.EndTime, "end_time")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	slot, err := h.svc.Commitments.UpdateAssignmentTimes(r.Context(), id, start, end)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// AssignGroupTrainers POST /api/courses/{id}/assign-trainers
func (h *Handler) AssignGroupTrainers(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req AssignGroupTrainersRequest
	if !h.decode(w, r, &req) {
		return
	}

	trainers := make([]service.GroupTrainerInput, len(req.Trainers))
	for i, t := range req.Trainers {
		trainers[i].TrainerID = t.TrainerID
		if trainers[i].StartTime, err = parseTime(t.StartTime, "start_time"); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		if trainers[i].EndTime, err = parseTime(t.EndTime, "end_time"); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
	}

	created, err := h.svc.Commitments.AssignGroupTrainers(r.Context(), courseID, trainers)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// CourseSchedule GET /api/courses/{id}/schedule?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) CourseSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	courseID, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	from, to, err := h.period(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	schedule, err := h.svc.Schedule.CourseSchedule(ctx, courseID, from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	total, err := h.svc.Schedule.CourseHours(ctx, courseID, from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CourseScheduleResponse{
		CourseID:   courseID,
		From:       formatDate(from),
		To:         formatDate(to),
		TotalHours: total,
		Schedule:   schedule,
	})
}

// ---------------------------------------------------------------------------
// Записи студентов
// ---------------------------------------------------------------------------

// EnrollPersonalSlot POST /api/personal-slots
func (h *Handler) EnrollPersonalSlot(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := service.EnrollInput{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		TrainerID: req.TrainerID,
	}

	var err error
	if in.StartDate, in.EndDate, err = parseDates(req.StartDate, req.EndDate); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if in.ClassTime, err = parseTime(req.ClassTime, "class_time"); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	slot, err := h.svc.Commitments.EnrollPersonalSlot(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

// ReassignTrainer POST /api/personal-slots/{id}/reassign
func (h *Handler) ReassignTrainer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req ReassignRequest
	if !h.decode(w, r, &req) {
		return
	}

	slot, err := h.svc.Commitments.ReassignTrainer(r.Context(), id, req.TrainerID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// ExtendCourse POST /api/personal-slots/{id}/extend
func (h *Handler) ExtendCourse(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req ExtendRequest
	if !h.decode(w, r, &req) {
		return
	}

	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	slot, err := h.svc.Commitments.ExtendCourse(r.Context(), id, end)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

// ---------------------------------------------------------------------------
// Заморозки
// ---------------------------------------------------------------------------

// CreateHold POST /api/holds
func (h *Handler) CreateHold(w http.ResponseWriter, r *http.Request) {
	userID, err := actingUser(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req CreateHoldRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	hold, err := h.svc.Holds.Create(r.Context(), service.CreateHoldInput{
		PersonalSlotID: req.PersonalSlotID,
		StartDate:      start,
		EndDate:        end,
		Reason:         req.Reason,
		RequestedBy:    userID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, hold)
}

// ListPendingHolds GET /api/holds
func (h *Handler) ListPendingHolds(w http.ResponseWriter, r *http.Request) {
	holds, err := h.svc.Holds.ListPending(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(holds))
}

// ListActiveHolds GET /api/holds/active?date=YYYY-MM-DD
func (h *Handler) ListActiveHolds(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateOrToday(r.URL.Query().Get("date"), "date")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	active, err := h.svc.Holds.ListActive(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(active))
}

// HoldHistory GET /api/holds/history?student_id=N
func (h *Handler) HoldHistory(w http.ResponseWriter, r *http.Request) {
	var studentID *int64
	if v := r.URL.Query().Get("student_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			h.writeServiceError(w, r, fmt.Errorf("%w: invalid student_id %q", service.ErrInvalidInput, v))
			return
		}
		studentID = &id
	}

	history, err := h.svc.Holds.History(r.Context(), studentID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(history))
}

// ApproveHold POST /api/holds/{id}/approve
func (h *Handler) ApproveHold(w http.ResponseWriter, r *http.Request) {
	h.decideHold(w, r, model.HoldStatusApproved)
}

// RejectHold POST /api/holds/{id}/reject
func (h *Handler) RejectHold(w http.ResponseWriter, r *http.Request) {
	h.decideHold(w, r, model.HoldStatusRejected)
}

func (h *Handler) decideHold(w http.ResponseWriter, r *http.Request, status model.HoldStatus) {
	holdID, err := parseID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	userID, err := actingUser(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var applied bool
	if status == model.HoldStatusApproved {
		applied, err = h.svc.Holds.Approve(r.Context(), holdID, userID)
	} else {
		applied, err = h.svc.Holds.Reject(r.Context(), holdID, userID)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, HoldDecisionResponse{HoldID: holdID, Status: status, Applied: applied})
}

// ---------------------------------------------------------------------------
// Вспомогательные функции
// ---------------------------------------------------------------------------

// decode читает JSON тела и валидирует его. При ошибке ответ уже записан.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return false
		}

		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: fields})
		return false
	}

	return true
}

// writeServiceError переводит ошибки сервисов в HTTP-статусы
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, service.ErrOverlapConflict):
		writeError(w, http.StatusConflict, "Schedule conflict", err)
	default:
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func (h *Handler) dateOrToday(v, name string) (time.Time, error) {
	if v == "" {
		return model.DateOf(h.now()), nil
	}
	return parseDate(v, name)
}

// period читает from и to; по умолчанию текущая неделя начиная с сегодня
func (h *Handler) period(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	from, err := h.dateOrToday(q.Get("from"), "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if q.Get("to") == "" {
		return from, model.AddDays(from, 6), nil
	}
	to, err := parseDate(q.Get("to"), "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func parseID(r *http.Request, name string) (int64, error) {
	v := chi.URLParam(r, name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", service.ErrInvalidInput, name, v)
	}
	return id, nil
}

func actingUser(r *http.Request) (int64, error) {
	v := strings.TrimSpace(r.Header.Get(UserIDHeader))
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s header must carry a user id", service.ErrInvalidInput, UserIDHeader)
	}
	return id, nil
}

func parseTime(v, name string) (model.TimeOfDay, error) {
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", service.ErrInvalidInput, name)
	}
	t, err := model.ParseTimeOfDay(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", service.ErrInvalidInput, name, err)
	}
	return t, nil
}

func parseDate(v, name string) (time.Time, error) {
	d, err := model.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", service.ErrInvalidInput, name, v)
	}
	return d, nil
}

func parseDates(start, end string) (time.Time, time.Time, error) {
	s, err := parseDate(start, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDate(end, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

func parseDuration(v string) (int, error) {
	minutes, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: duration must be a number of minutes, got %q", service.ErrInvalidInput, v)
	}
	return minutes, nil
}

// nonNil пустой список вместо null в JSON
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
