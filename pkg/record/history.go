package record

import (
	"fmt"
	"sync"
)

// History is the append-only, ordered list of records of a session.
// Records are never removed or edited; a remeasurement appends a new record that
// supersedes the old one. History is safe for concurrent use.
type History struct {
	mu         sync.RWMutex
	records    []Record
	byID       map[string]int
	superseded map[string]string // old ID -> new ID
	counts     int
}

// NewHistory creates an empty history
func NewHistory() *History {
	return &History{
		byID:       make(map[string]int),
		superseded: make(map[string]string),
	}
}

// Append adds r to the end of the history and returns it with its sequence number set
func (h *History) Append(r Record) (Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.appendLocked(r)
}

func (h *History) appendLocked(r Record) (Record, error) {
	if r.ID == "" || r.Payload == nil {
		return Record{}, fmt.Errorf("%w: record was not created with New", ErrInvalidRecord)
	}
	if !finite(r.Value) || !finitePayload(r.Payload) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFinite, r.Type)
	}
	if _, exists := h.byID[r.ID]; exists {
		return Record{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, r.ID)
	}

	r = r.clone()
	r.Seq = uint64(len(h.records) + 1)
	h.byID[r.ID] = len(h.records)
	h.records = append(h.records, r)
	if r.Type == TypeCount && r.Supersedes == "" {
		h.counts++
	}
	return r.clone(), nil
}

// Supersede appends r as the replacement of the record oldID. The old record stays
// in the history but is no longer active.
func (h *History) Supersede(oldID string, r Record) (Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	i, ok := h.byID[oldID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, oldID)
	}
	if next, done := h.superseded[oldID]; done {
		return Record{}, fmt.Errorf("%w: %s is already superseded by %s", ErrInvalidRecord, oldID, next)
	}
	if old := h.records[i]; old.Type != r.Type {
		return Record{}, fmt.Errorf("%w: cannot replace %s with %s", ErrInvalidRecord, old.Type, r.Type)
	}

	r = r.clone()
	r.Supersedes = oldID
	added, err := h.appendLocked(r)
	if err != nil {
		return Record{}, err
	}
	h.superseded[oldID] = added.ID
	return added, nil
}

// All returns every record in creation order
func (h *History) All() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Record, len(h.records))
	for i, r := range h.records {
		out[i] = r.clone()
	}
	return out
}

// Active returns the records that have not been superseded, in creation order
func (h *History) Active() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Record, 0, len(h.records)-len(h.superseded))
	for _, r := range h.records {
		if _, done := h.superseded[r.ID]; !done {
			out = append(out, r.clone())
		}
	}
	return out
}

// Get returns the record with the given ID
func (h *History) Get(id string) (Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	i, ok := h.byID[id]
	if !ok {
		return Record{}, false
	}
	return h.records[i].clone(), true
}

// SupersededBy returns the ID of the record that replaced id
func (h *History) SupersededBy(id string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	next, ok := h.superseded[id]
	return next, ok
}

// Latest returns the most recently appended record
func (h *History) Latest() (Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1].clone(), true
}

// Len returns the number of records including superseded ones
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// NextCount returns the number the next count marker gets, starting at 1
func (h *History) NextCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.counts + 1
}

// Rows returns the export rows of the active records
func (h *History) Rows(decimals int) [][]string {
	active := h.Active()
	rows := make([][]string, len(active))
	for i, r := range active {
		rows[i] = r.Row(decimals)
	}
	return rows
}
