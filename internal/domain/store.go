package domain

import "slices"

// AnnotationStore is the annotation history of a session keyed by page
// number. It is copy-on-write: Add and Remove return a new store and never
// mutate slices reachable from an earlier value.
type AnnotationStore struct {
	byPage map[int][]Annotation
	order  []string
	pageOf map[string]int
}

// NewAnnotationStore returns an empty store.
func NewAnnotationStore() AnnotationStore {
	return AnnotationStore{
		byPage: map[int][]Annotation{},
		pageOf: map[string]int{},
	}
}

// Len returns the number of records.
func (s AnnotationStore) Len() int {
	return len(s.order)
}

// Add appends a record.
func (s AnnotationStore) Add(a Annotation) AnnotationStore {
	next := s.clone()
	next.byPage[a.PageNumber] = append(slices.Clip(s.byPage[a.PageNumber]), a)
	next.order = append(slices.Clip(s.order), a.ID)
	next.pageOf[a.ID] = a.PageNumber
	return next
}

// Remove drops the record with the given ID.
func (s AnnotationStore) Remove(id string) (AnnotationStore, bool) {
	page, ok := s.pageOf[id]
	if !ok {
		return s, false
	}
	next := s.clone()
	next.byPage[page] = slices.DeleteFunc(slices.Clone(s.byPage[page]), func(a Annotation) bool {
		return a.ID == id
	})
	if len(next.byPage[page]) == 0 {
		delete(next.byPage, page)
	}
	next.order = slices.DeleteFunc(slices.Clone(s.order), func(v string) bool { return v == id })
	delete(next.pageOf, id)
	return next, true
}

// Get returns the record with the given ID.
func (s AnnotationStore) Get(id string) (Annotation, bool) {
	page, ok := s.pageOf[id]
	if !ok {
		return Annotation{}, false
	}
	for _, a := range s.byPage[page] {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// Page returns the records of page n in creation order.
func (s AnnotationStore) Page(n int) []Annotation {
	return slices.Clone(s.byPage[n])
}

// IDs returns the IDs of page n's records in creation order.
func (s AnnotationStore) IDs(n int) []string {
	ids := make([]string, 0, len(s.byPage[n]))
	for _, a := range s.byPage[n] {
		ids = append(ids, a.ID)
	}
	return ids
}

// All returns every record in creation order.
func (s AnnotationStore) All() []Annotation {
	out := make([]Annotation, 0, len(s.order))
	for _, id := range s.order {
		if a, ok := s.Get(id); ok {
			out = append(out, a)
		}
	}
	return out
}

func (s AnnotationStore) clone() AnnotationStore {
	next := AnnotationStore{
		byPage: make(map[int][]Annotation, len(s.byPage)+1),
		order:  s.order,
		pageOf: make(map[string]int, len(s.pageOf)+1),
	}
	for k, v := range s.byPage {
		next.byPage[k] = v
	}
	for k, v := range s.pageOf {
		next.pageOf[k] = v
	}
	return next
}
