package graph

import "fmt"

// Vocabulary maps names to dense identifiers in insertion order.
// It is mutated only while a Builder owns it; built graphs share it read-only.
type Vocabulary[T ~uint16 | ~uint32] struct {
	ids   map[string]T
	names []string
	limit uint64
}

func newVocabulary[T ~uint16 | ~uint32](capacity int, limit uint64) *Vocabulary[T] {
	return &Vocabulary[T]{
		ids:   make(map[string]T, capacity),
		names: make([]string, 0, capacity),
		limit: limit,
	}
}

// insert returns the id of name, adding it when unseen.
func (v *Vocabulary[T]) insert(name string) (T, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	if id, ok := v.ids[name]; ok {
		return id, nil
	}
	if uint64(len(v.names)) >= v.limit {
		return 0, fmt.Errorf("vocabulary holds at most %d entries", v.limit)
	}
	id := T(len(v.names))
	v.ids[name] = id
	v.names = append(v.names, name)
	return id, nil
}

// ID returns the identifier of name.
func (v *Vocabulary[T]) ID(name string) (T, bool) {
	id, ok := v.ids[name]
	return id, ok
}

// Name returns the name of id.
func (v *Vocabulary[T]) Name(id T) (string, bool) {
	if uint64(id) >= uint64(len(v.names)) {
		return "", false
	}
	return v.names[id], true
}

// Len returns the number of entries.
func (v *Vocabulary[T]) Len() int {
	return len(v.names)
}

// Names returns a copy of the names ordered by identifier.
func (v *Vocabulary[T]) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}
