package memory

import (
	"slices"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

func (s *Store) Operators() []storage.Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Operators)
}

func (s *Store) Operator(id int64) (storage.Operator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.operatorIndex(id)
	if i < 0 {
		return storage.Operator{}, apperr.NotFound("operator", id)
	}
	return s.data.Operators[i], nil
}

func (s *Store) CreateOperator(op storage.Operator) storage.Operator {
	s.mu.Lock()
	op.ID = s.nextID(&s.data.OperatorCounter)
	s.data.Operators = append(s.data.Operators, op)
	s.mu.Unlock()

	s.notify()
	return op
}

// UpdateOperator applies fn to the stored operator. The id cannot change.
func (s *Store) UpdateOperator(id int64, fn func(*storage.Operator) error) (storage.Operator, error) {
	s.mu.Lock()
	i := s.operatorIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Operator{}, apperr.NotFound("operator", id)
	}

	op := s.data.Operators[i]
	if err := fn(&op); err != nil {
		s.mu.Unlock()
		return storage.Operator{}, err
	}
	op.ID = id
	s.data.Operators[i] = op
	s.mu.Unlock()

	s.notify()
	return op, nil
}

// DeleteOperator removes an operator no record references.
func (s *Store) DeleteOperator(id int64) error {
	s.mu.Lock()
	i := s.operatorIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return apperr.NotFound("operator", id)
	}

	refs := 0
	for _, r := range s.data.Records {
		if r.OperatorID == id {
			refs++
		}
	}
	if refs > 0 {
		s.mu.Unlock()
		return apperr.ReferentialConflict("operator", id, refs)
	}

	s.data.Operators = slices.Delete(s.data.Operators, i, i+1)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) operatorIndex(id int64) int {
	return slices.IndexFunc(s.data.Operators, func(o storage.Operator) bool { return o.ID == id })
}

func (s *Store) StaffUsers() []storage.StaffUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.StaffUsers)
}

func (s *Store) StaffUser(kind storage.StaffKind) (storage.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.data.StaffUsers {
		if u.Kind == kind {
			return u, nil
		}
	}
	return storage.StaffUser{}, apperr.NotFound("staff user", string(kind))
}

// PutStaffUser inserts the account or replaces the one of the same kind.
func (s *Store) PutStaffUser(u storage.StaffUser) storage.StaffUser {
	s.mu.Lock()
	i := slices.IndexFunc(s.data.StaffUsers, func(x storage.StaffUser) bool { return x.Kind == u.Kind })
	if i >= 0 {
		u.ID = s.data.StaffUsers[i].ID
		s.data.StaffUsers[i] = u
	} else {
		var maxID int64
		for _, x := range s.data.StaffUsers {
			maxID = max(maxID, x.ID)
		}
		u.ID = maxID + 1
		s.data.StaffUsers = append(s.data.StaffUsers, u)
	}
	s.mu.Unlock()

	s.notify()
	return u
}
