package service

import (
	"errors"
	"fmt"
)

// Ошибки сервисов. Вызывающий код проверяет их через errors.Is,
// сообщение дополняется контекстом через fmt.Errorf("%w: ...").
var (
	// ErrInvalidInput некорректное время, дата или длительность
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidInterval интервал нулевой или отрицательной длины
	ErrInvalidInterval = fmt.Errorf("%w: interval end must be after start", ErrInvalidInput)

	// ErrNotFound неизвестный тренер, курс, запись или заявка
	ErrNotFound = errors.New("not found")

	// ErrOverlapConflict новое назначение пересекается с существующими занятиями тренера
	ErrOverlapConflict = errors.New("overlaps an existing commitment")

	// ErrInvalidStateTransition действие над заявкой не из статуса PENDING.
	// Approve и Reject не возвращают её наружу: повтор считается no-op.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)
