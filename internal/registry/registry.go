// Package registry provides immutable id-indexed lookups over reference data.
//
// Validators receive registries instead of raw slices so every foreign-key
// check is a map lookup and no lookup structure is rebuilt per record.
package registry

import "github.com/roach88/atlas/internal/model"

// Lookup is the read-only existence check validators depend on.
type Lookup interface {
	// Name identifies the collection in messages, e.g. "entities".
	Name() string
	Has(id string) bool
}

// Index is an immutable collection keyed by id. When ids repeat, the first
// occurrence wins.
type Index[T model.Identifiable] struct {
	name  string
	items []T
	byID  map[string]int
}

// NewIndex builds an index over items. Items with an empty id are kept in
// All but cannot be looked up.
func NewIndex[T model.Identifiable](name string, items []T) *Index[T] {
	idx := &Index[T]{
		name:  name,
		items: append([]T(nil), items...),
		byID:  make(map[string]int, len(items)),
	}
	for i, item := range idx.items {
		id := item.Key()
		if id == "" {
			continue
		}
		if _, seen := idx.byID[id]; !seen {
			idx.byID[id] = i
		}
	}
	return idx
}

// Name implements Lookup.
func (i *Index[T]) Name() string { return i.name }

// Has implements Lookup.
func (i *Index[T]) Has(id string) bool {
	_, ok := i.byID[id]
	return ok
}

// Get returns the item with the given id.
func (i *Index[T]) Get(id string) (T, bool) {
	pos, ok := i.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return i.items[pos], true
}

// Len returns the number of items, including unindexable ones.
func (i *Index[T]) Len() int { return len(i.items) }

// All returns a copy of the items in source order.
func (i *Index[T]) All() []T { return append([]T(nil), i.items...) }

// Collection names used in messages.
const (
	NameEntities      = "entities"
	NameStackLayers   = "stack_layers"
	NameActionTypes   = "action_types"
	NameEntityClasses = "entity_classes"
	NameEvents        = "events"
)

// Set bundles the reference registries of one run.
type Set struct {
	Entities      *Index[model.Entity]
	StackLayers   *Index[model.StackLayer]
	ActionTypes   *Index[model.ActionType]
	EntityClasses *Index[model.EntityClass]
}

// NewSet indexes the reference collections.
func NewSet(entities []model.Entity, layers []model.StackLayer, actions []model.ActionType, classes []model.EntityClass) *Set {
	return &Set{
		Entities:      NewIndex(NameEntities, entities),
		StackLayers:   NewIndex(NameStackLayers, layers),
		ActionTypes:   NewIndex(NameActionTypes, actions),
		EntityClasses: NewIndex(NameEntityClasses, classes),
	}
}
