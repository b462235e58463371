package formatting

// Pluralize выбирает форму слова для числа: 1 час, 2 часа, 5 часов
func Pluralize(count int, one, few, many string) string {
	if count < 0 {
		count = -count
	}
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeTrainers возвращает правильное склонение слова "тренер"
func PluralizeTrainers(count int) string {
	return Pluralize(count, "тренер", "тренера", "тренеров")
}

// PluralizeHolds возвращает правильное склонение слова "заявка"
func PluralizeHolds(count int) string {
	return Pluralize(count, "заявка", "заявки", "заявок")
}

// PluralizeDays возвращает правильное склонение слова "день"
func PluralizeDays(count int) string {
	return Pluralize(count, "день", "дня", "дней")
}
