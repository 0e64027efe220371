package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"academic-records/store"
)

// Виды ошибок для errors.Is
var (
	ErrValidation           = errors.New("validation error")
	ErrUniqueness           = errors.New("uniqueness violation")
	ErrReferentialIntegrity = errors.New("dependent records exist")
	ErrNotFound             = errors.New("not found")
	ErrForbiddenState       = errors.New("forbidden state")
)

type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// ValidationError несёт ошибки по полям, ничего не сохранено
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: {msg}}}
}

// UniquenessError сообщает о дубликате по полю Field
type UniquenessError struct {
	Field   string
	Message string
}

func (e *UniquenessError) Error() string { return e.Field + ": " + e.Message }

func (e *UniquenessError) Is(target error) bool { return target == ErrUniqueness }

// ReferentialIntegrityError запрещает удаление, пока есть зависимые записи
type ReferentialIntegrityError struct {
	Messages []string
}

func (e *ReferentialIntegrityError) Error() string { return strings.Join(e.Messages, "; ") }

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }

// StateError: запись не найдена (ErrNotFound) или её состояние не позволяет
// изменение (ErrForbiddenState)
type StateError struct {
	Kind    error
	Entity  string
	ID      uint
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Message)
}

func (e *StateError) Is(target error) bool { return target == e.Kind }

func notFound(entity string, id uint) *StateError {
	return &StateError{Kind: ErrNotFound, Entity: entity, ID: id, Message: entity + " not found"}
}

func forbidden(entity string, id uint, msg string) *StateError {
	return &StateError{Kind: ErrForbiddenState, Entity: entity, ID: id, Message: msg}
}

// lookup превращает store.ErrNotFound в StateError, прочие ошибки оборачивает
func lookup(entity string, id uint, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("load %s %d: %w", entity, id, err)
}

// persist превращает store.ErrDuplicate в UniquenessError, прочие ошибки оборачивает
func persist(entity, field, msg string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrDuplicate) {
		return &UniquenessError{Field: field, Message: msg}
	}
	return fmt.Errorf("save %s: %w", entity, err)
}
