package model

import "time"

// DateLayout формат дат в API и конфигурации
const DateLayout = "2006-01-02"

// DateOf обрезает момент времени до календарной даты (полночь UTC).
// Все даты в модели хранятся в этом виде.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// AddDays сдвигает дату на n календарных дней
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// DaysInclusive количество дней в диапазоне [start, end] включительно
func DaysInclusive(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)).Hours()/24) + 1
}

// DateRange закрытый диапазон дат [Start, End]
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Contains проверяет что дата попадает в диапазон (включительно)
func (r DateRange) Contains(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// Intersects проверяет пересечение двух закрытых диапазонов
func (r DateRange) Intersects(other DateRange) bool {
	return !DateOf(r.Start).After(DateOf(other.End)) && !DateOf(r.End).Before(DateOf(other.Start))
}

// Valid true если начало не позже конца
func (r DateRange) Valid() bool {
	return !DateOf(r.Start).After(DateOf(r.End))
}
