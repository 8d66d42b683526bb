package services

// Optimistic holds a confirmed value and, while a persistence call is
// outstanding, the locally applied next value.
type Optimistic[T any] struct {
	confirmed T
	pending   *T
}

func NewOptimistic[T any](value T) Optimistic[T] {
	return Optimistic[T]{confirmed: value}
}

func (state *Optimistic[T]) Value() T {
	if state.pending != nil {
		return *state.pending
	}
	return state.confirmed
}

func (state *Optimistic[T]) Confirmed() T {
	return state.confirmed
}

func (state *Optimistic[T]) Pending() bool {
	return state.pending != nil
}

func (state *Optimistic[T]) Apply(next T) {
	state.pending = &next
}

func (state *Optimistic[T]) Confirm() {
	if state.pending == nil {
		return
	}
	state.confirmed = *state.pending
	state.pending = nil
}

func (state *Optimistic[T]) Revert() {
	state.pending = nil
}

// Adopt replaces both values with remote truth.
func (state *Optimistic[T]) Adopt(remote T) {
	state.confirmed = remote
	state.pending = nil
}
