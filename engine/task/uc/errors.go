package uc

import (
	"errors"

	"github.com/flowboard/flowboard/engine/core"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("task not found")
)

// invalidInput builds the structured error surfaced to the HTTP layer while
// keeping ErrInvalidInput matchable through the chain.
func invalidInput(cause error, details map[string]any) error {
	return core.NewError(errors.Join(ErrInvalidInput, cause), "INVALID_INPUT", details)
}

func notFound(cause error) error {
	return core.NewError(errors.Join(ErrNotFound, cause), "TASK_NOT_FOUND", nil)
}
