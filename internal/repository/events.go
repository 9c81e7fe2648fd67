package repository

// ChangeOp names the mutation that produced a ChangeEvent.
type ChangeOp string

const (
	OpAdd     ChangeOp = "add"
	OpUpdate  ChangeOp = "update"
	OpDelete  ChangeOp = "delete"
	OpSaveAll ChangeOp = "save-all"
)

// ChangeEvent is delivered to subscribers after a mutation has persisted.
type ChangeEvent struct {
	Op       ChangeOp
	RecordID string // empty for batch operations
}

// Subscribe registers a callback fired after every successful mutation and
// returns an unsubscribe func. Callbacks run synchronously on the mutating
// goroutine; keep them short.
func (r *Repository) Subscribe(fn func(ChangeEvent)) func() {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	id := r.nextObs
	r.nextObs++
	r.observers[id] = fn
	return func() {
		r.obsMu.Lock()
		defer r.obsMu.Unlock()
		delete(r.observers, id)
	}
}

func (r *Repository) notify(ev ChangeEvent) {
	r.obsMu.Lock()
	fns := make([]func(ChangeEvent), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
