package salbp

import (
	"context"
	"errors"
)

var (
	ErrInstanceNotFound = errors.New("salbp: instance not found")
	ErrSolutionNotFound = errors.New("salbp: solution not found")
	ErrInvalidName      = errors.New("salbp: invalid instance name")
	ErrEmptyCatalog     = errors.New("salbp: instance catalog is empty")

	ErrUnknownTask    = errors.New("salbp: unknown task")
	ErrUnknownStation = errors.New("salbp: unknown station")
	ErrNotInStation   = errors.New("salbp: task is not in station")
	ErrNotSelected    = errors.New("salbp: no task selected")
	ErrNoInstance     = errors.New("salbp: no instance loaded")
	ErrIncomplete     = errors.New("salbp: not all tasks are assigned")
)

// Store is the instance catalog: raw instance text and reference solution
// text, both keyed by the same instance name.
type Store interface {
	// Catalog
	ListInstances(ctx context.Context) ([]string, error)

	// Instances
	GetInstance(ctx context.Context, name string) (string, error)
	PutInstance(ctx context.Context, name, text string) error
	DeleteInstance(ctx context.Context, name string) error

	// Reference solutions
	GetSolution(ctx context.Context, name string) (string, error)
	PutSolution(ctx context.Context, name, text string) error
}
