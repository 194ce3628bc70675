package domain

import "fmt"

var ErrEntityNotFound *notFoundError

type notFoundError struct {
	EntityType string
	Key        string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.EntityType, e.Key)
}

func NewNotFoundError(entityType, key string) error {
	return &notFoundError{
		EntityType: entityType,
		Key:        key,
	}
}
