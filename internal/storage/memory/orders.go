package memory

import (
	"slices"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

func (s *Store) Orders() []storage.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Order, len(s.data.Orders))
	for i, o := range s.data.Orders {
		out[i] = o.Clone()
	}
	return out
}

func (s *Store) Order(id int64) (storage.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.orderIndex(id)
	if i < 0 {
		return storage.Order{}, apperr.NotFound("order", id)
	}
	return s.data.Orders[i].Clone(), nil
}

// CreateOrder stores a new order and gives every operation a fresh id.
func (s *Store) CreateOrder(o storage.Order) storage.Order {
	o = o.Clone()

	s.mu.Lock()
	o.ID = s.nextID(&s.data.OrderCounter)
	for i := range o.Items {
		for j := range o.Items[i].Operations {
			o.Items[i].Operations[j].ID = s.nextID(&s.data.OperationCounter)
		}
	}
	if len(o.Items) > 0 {
		o.SyncGarments()
	}
	s.data.Orders = append(s.data.Orders, o)
	out := o.Clone()
	s.mu.Unlock()

	s.notify()
	return out
}

// UpdateOrder applies fn to a copy of the order. Operations that keep an id
// already present in the order retain it; the rest get a fresh id.
func (s *Store) UpdateOrder(id int64, fn func(*storage.Order) error) (storage.Order, error) {
	s.mu.Lock()
	i := s.orderIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Order{}, apperr.NotFound("order", id)
	}

	current := s.data.Orders[i]
	known := make(map[int64]bool)
	for _, item := range current.Items {
		for _, op := range item.Operations {
			known[op.ID] = true
		}
	}

	o := current.Clone()
	if err := fn(&o); err != nil {
		s.mu.Unlock()
		return storage.Order{}, err
	}
	o.ID = id

	used := make(map[int64]bool)
	for i := range o.Items {
		for j := range o.Items[i].Operations {
			op := &o.Items[i].Operations[j]
			if !known[op.ID] || used[op.ID] {
				op.ID = s.nextID(&s.data.OperationCounter)
			}
			used[op.ID] = true
		}
	}

	s.data.Orders[i] = o
	out := o.Clone()
	s.mu.Unlock()

	s.notify()
	return out, nil
}

// DeleteOrder removes an order no record references.
func (s *Store) DeleteOrder(id int64) error {
	s.mu.Lock()
	i := s.orderIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return apperr.NotFound("order", id)
	}

	refs := 0
	for _, r := range s.data.Records {
		if r.OrderID == id {
			refs++
		}
	}
	if refs > 0 {
		s.mu.Unlock()
		return apperr.ReferentialConflict("order", id, refs)
	}

	s.data.Orders = slices.Delete(s.data.Orders, i, i+1)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) orderIndex(id int64) int {
	return slices.IndexFunc(s.data.Orders, func(o storage.Order) bool { return o.ID == id })
}
