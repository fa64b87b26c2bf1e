// Package dialog is the per-entity modal state machine.
//
// A Mode is Closed, Create, Edit(payload) or Delete(payload). Opening any mode
// replaces the current one, so at most one dialog per feature is ever open.
package dialog

type Kind int

const (
	Closed Kind = iota
	Create
	Edit
	Delete
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	default:
		return "closed"
	}
}

// Mode is the dialog state for entities of type T. The zero value is Closed.
type Mode[T any] struct {
	kind    Kind
	payload T
}

func OpenCreate[T any]() Mode[T] { return Mode[T]{kind: Create} }

func OpenEdit[T any](v T) Mode[T] { return Mode[T]{kind: Edit, payload: v} }

func OpenDelete[T any](v T) Mode[T] { return Mode[T]{kind: Delete, payload: v} }

func Close[T any]() Mode[T] { return Mode[T]{} }

func (m Mode[T]) Kind() Kind { return m.kind }

func (m Mode[T]) IsOpen() bool { return m.kind != Closed }

func (m Mode[T]) IsCreate() bool { return m.kind == Create }

// Payload returns the entity carried by Edit and Delete.
func (m Mode[T]) Payload() (T, bool) {
	if m.kind != Edit && m.kind != Delete {
		var zero T
		return zero, false
	}
	return m.payload, true
}

// Editing returns the payload when the mode is Edit.
func (m Mode[T]) Editing() (T, bool) {
	if m.kind != Edit {
		var zero T
		return zero, false
	}
	return m.payload, true
}

// Deleting returns the payload when the mode is Delete.
func (m Mode[T]) Deleting() (T, bool) {
	if m.kind != Delete {
		var zero T
		return zero, false
	}
	return m.payload, true
}
