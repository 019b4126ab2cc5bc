package model

import (
	"sort"

	promptmodel "promptstore-backend/internal/domains/prompt/model"
)

// Queue is the moderator's live view: the records awaiting review, newest
// first, plus the moderator's selection. The reconciler owns the only mutable
// instance; Apply is the single way it changes.
//
// Invariant: Selected only contains IDs present in Items.
type Queue struct {
	Items    []promptmodel.PromptRecord `json:"items"`
	Selected map[string]bool            `json:"selected"`
}

// NewQueue builds a queue from a seed listing, normalizing order.
func NewQueue(items []promptmodel.PromptRecord) *Queue {
	q := &Queue{
		Items:    append([]promptmodel.PromptRecord(nil), items...),
		Selected: make(map[string]bool),
	}
	q.sort()
	return q
}

// InFilter reports whether a record belongs in the moderation queue.
func InFilter(record promptmodel.PromptRecord) bool {
	return record.Status == promptmodel.StatusPending
}

// Apply folds one change event into the queue. Deterministic and idempotent:
// replaying an event leaves the queue unchanged, and the selection never
// references an evicted record.
func (q *Queue) Apply(event promptmodel.ChangeEvent) {
	record := event.Record

	switch event.Kind {
	case promptmodel.EventInsert, promptmodel.EventUpdate:
		if !InFilter(record) {
			// An update can carry a record out of the filter; an insert of
			// an out-of-filter record is simply not ours.
			q.remove(record.ID)
			return
		}
		if i := q.index(record.ID); i >= 0 {
			q.Items[i] = record
		} else {
			q.Items = append(q.Items, record)
		}
		q.sort()

	case promptmodel.EventDelete:
		q.remove(record.ID)
	}
}

// SetSelected toggles one record. Unknown IDs are ignored.
func (q *Queue) SetSelected(id string, selected bool) bool {
	if q.index(id) < 0 {
		return false
	}
	if selected {
		q.Selected[id] = true
	} else {
		delete(q.Selected, id)
	}
	return true
}

// SetSelectAll selects or clears every record in the queue.
func (q *Queue) SetSelectAll(selectAll bool) {
	q.Selected = make(map[string]bool)
	if !selectAll {
		return
	}
	for _, item := range q.Items {
		q.Selected[item.ID] = true
	}
}

// Len returns the number of queued records.
func (q *Queue) Len() int {
	return len(q.Items)
}

func (q *Queue) index(id string) int {
	for i, item := range q.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) remove(id string) {
	if i := q.index(id); i >= 0 {
		q.Items = append(q.Items[:i], q.Items[i+1:]...)
	}
	delete(q.Selected, id)
}

// sort keeps newest first, with the ID as a stable tiebreak so equal
// timestamps cannot reorder between applications.
func (q *Queue) sort() {
	sort.SliceStable(q.Items, func(i, j int) bool {
		if !q.Items[i].CreatedAt.Equal(q.Items[j].CreatedAt) {
			return q.Items[i].CreatedAt.After(q.Items[j].CreatedAt)
		}
		return q.Items[i].ID < q.Items[j].ID
	})
}
