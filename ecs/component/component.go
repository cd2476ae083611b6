package component

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

type ComponentID uint32

var (
	nextComponentID atomic.Uint32
	names           sync.Map
)

// ComponentKind identifies one component store. Kinds are process-wide.
type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any](name string) ComponentKind[T] {
	id := ComponentID(nextComponentID.Add(1))
	names.Store(id, name)
	return ComponentKind[T]{id: id}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

func (k ComponentKind[T]) Name() string {
	if v, ok := names.Load(k.id); ok {
		return v.(string)
	}
	return "unknown"
}

type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any](name string) ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T](name)}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
