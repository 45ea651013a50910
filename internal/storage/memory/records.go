package memory

import (
	"slices"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// Records returns copies of the records accepted by match, in insertion order.
// A nil match returns every record.
func (s *Store) Records(match func(storage.Record) bool) []storage.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Record, 0, len(s.data.Records))
	for _, r := range s.data.Records {
		if match == nil || match(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *Store) Record(id int64) (storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.recordIndex(id)
	if i < 0 {
		return storage.Record{}, apperr.NotFound("record", id)
	}
	return s.data.Records[i].Clone(), nil
}

// InsertRecord assigns the next record id and appends.
func (s *Store) InsertRecord(r storage.Record) storage.Record {
	r = r.Clone()

	s.mu.Lock()
	r.ID = s.nextID(&s.data.RecordCounter)
	s.data.Records = append(s.data.Records, r)
	s.mu.Unlock()

	s.notify()
	return r.Clone()
}

func (s *Store) UpdateRecord(id int64, fn func(*storage.Record) error) (storage.Record, error) {
	s.mu.Lock()
	i := s.recordIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return storage.Record{}, apperr.NotFound("record", id)
	}

	r := s.data.Records[i].Clone()
	if err := fn(&r); err != nil {
		s.mu.Unlock()
		return storage.Record{}, err
	}
	r.ID = id
	s.data.Records[i] = r
	s.mu.Unlock()

	s.notify()
	return r.Clone(), nil
}

// UpdateRecords applies fn to every record accepted by match in one critical
// section. fn reports whether it changed the record; changed records are returned.
func (s *Store) UpdateRecords(match func(storage.Record) bool, fn func(*storage.Record) bool) []storage.Record {
	s.mu.Lock()
	var changed []storage.Record
	for i := range s.data.Records {
		if !match(s.data.Records[i]) {
			continue
		}
		if fn(&s.data.Records[i]) {
			changed = append(changed, s.data.Records[i].Clone())
		}
	}
	s.mu.Unlock()

	if len(changed) > 0 {
		s.notify()
	}
	return changed
}

func (s *Store) DeleteRecord(id int64) error {
	s.mu.Lock()
	i := s.recordIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return apperr.NotFound("record", id)
	}
	s.data.Records = slices.Delete(s.data.Records, i, i+1)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) recordIndex(id int64) int {
	return slices.IndexFunc(s.data.Records, func(r storage.Record) bool { return r.ID == id })
}
