package statemachine

import (
	"errors"
	"sync"
)

// ErrTerminated is returned by Dispatch once a state has returned nil.
var ErrTerminated = errors.New("state machine terminated")

// StateFn represents a state following Rob Pike's pattern: it handles one
// event for the entity and returns the state to move to. Returning an error
// rejects the event and leaves the machine where it was.
type StateFn[T any] func(entity *T, event any) (StateFn[T], error)

// StateMachine is a small thread-safe wrapper around a current StateFn.
type StateMachine[T any] struct {
	entity  *T
	stateFn StateFn[T]
	mutex   sync.Mutex
}

// NewStateMachine creates a new state machine for the given entity
func NewStateMachine[T any](entity *T, initial StateFn[T]) *StateMachine[T] {
	return &StateMachine[T]{
		entity:  entity,
		stateFn: initial,
	}
}

// Dispatch runs the current state with event and moves to the state it
// returns. State functions must not call back into the machine.
func (sm *StateMachine[T]) Dispatch(event any) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.stateFn == nil {
		return ErrTerminated
	}
	next, err := sm.stateFn(sm.entity, event)
	if err != nil {
		return err
	}
	sm.stateFn = next
	return nil
}
