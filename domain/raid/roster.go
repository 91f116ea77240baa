package raid

import "raid-lab/domain"

// roster is an insertion-ordered map. Updating an existing key keeps its
// position, deleting it closes the gap.
type roster[V any] struct {
	keys   []domain.ParticipantID
	values map[domain.ParticipantID]V
}

func newRoster[V any]() *roster[V] {
	return &roster[V]{values: make(map[domain.ParticipantID]V)}
}

func (r *roster[V]) get(id domain.ParticipantID) (V, bool) {
	v, ok := r.values[id]
	return v, ok
}

func (r *roster[V]) has(id domain.ParticipantID) bool {
	_, ok := r.values[id]
	return ok
}

func (r *roster[V]) set(id domain.ParticipantID, v V) {
	if _, ok := r.values[id]; !ok {
		r.keys = append(r.keys, id)
	}
	r.values[id] = v
}

func (r *roster[V]) delete(id domain.ParticipantID) bool {
	if _, ok := r.values[id]; !ok {
		return false
	}
	delete(r.values, id)
	for i, k := range r.keys {
		if k == id {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// ids returns a copy of the keys in insertion order.
func (r *roster[V]) ids() []domain.ParticipantID {
	return append([]domain.ParticipantID(nil), r.keys...)
}

func (r *roster[V]) len() int {
	return len(r.keys)
}

// each walks entries in insertion order over a copy of the keys, so fn may
// delete the entry it is visiting.
func (r *roster[V]) each(fn func(id domain.ParticipantID, v V)) {
	for _, k := range r.ids() {
		if v, ok := r.values[k]; ok {
			fn(k, v)
		}
	}
}

func (r *roster[V]) clear() {
	r.keys = nil
	r.values = make(map[domain.ParticipantID]V)
}

func (r *roster[V]) toMap() map[domain.ParticipantID]V {
	out := make(map[domain.ParticipantID]V, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
