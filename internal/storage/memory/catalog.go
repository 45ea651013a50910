package memory

import (
	"maps"
	"slices"
	"strings"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

func (s *Store) Garments() []storage.Garment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Garments)
}

func (s *Store) Garment(id int64) (storage.Garment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.data.Garments {
		if g.ID == id {
			return g, nil
		}
	}
	return storage.Garment{}, apperr.NotFound("garment", id)
}

// CreateGarment rejects names already present, ignoring case.
func (s *Store) CreateGarment(name string) (storage.Garment, error) {
	s.mu.Lock()
	for _, g := range s.data.Garments {
		if strings.EqualFold(g.Name, name) {
			s.mu.Unlock()
			return storage.Garment{}, apperr.Validation("garment %q already exists", name).With("nombre", name)
		}
	}
	g := storage.Garment{ID: s.nextID(&s.data.GarmentCounter), Name: name}
	s.data.Garments = append(s.data.Garments, g)
	s.mu.Unlock()

	s.notify()
	return g, nil
}

// DeleteGarment refuses while an order item still uses the garment.
func (s *Store) DeleteGarment(id int64) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.data.Garments, func(g storage.Garment) bool { return g.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return apperr.NotFound("garment", id)
	}

	refs := 0
	for _, o := range s.data.Orders {
		for _, item := range o.Items {
			if item.GarmentID == id {
				refs++
			}
		}
	}
	if refs > 0 {
		s.mu.Unlock()
		return apperr.ReferentialConflict("garment", id, refs)
	}

	s.data.Garments = slices.Delete(s.data.Garments, i, i+1)
	delete(s.data.Templates, id)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) Seams() []storage.Seam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Seams)
}

func (s *Store) CreateSeam(name string) (storage.Seam, error) {
	s.mu.Lock()
	if s.seamIndexByName(name) >= 0 {
		s.mu.Unlock()
		return storage.Seam{}, apperr.Validation("seam %q already exists", name).With("nombre", name)
	}
	seam := storage.Seam{ID: s.nextID(&s.data.SeamCounter), Name: name}
	s.data.Seams = append(s.data.Seams, seam)
	s.mu.Unlock()

	s.notify()
	return seam, nil
}

func (s *Store) RenameSeam(id int64, name string) (storage.Seam, error) {
	s.mu.Lock()
	i := slices.IndexFunc(s.data.Seams, func(c storage.Seam) bool { return c.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return storage.Seam{}, apperr.NotFound("seam", id)
	}
	s.data.Seams[i].Name = name
	seam := s.data.Seams[i]
	s.mu.Unlock()

	s.notify()
	return seam, nil
}

func (s *Store) DeleteSeam(id int64) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.data.Seams, func(c storage.Seam) bool { return c.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return apperr.NotFound("seam", id)
	}
	s.data.Seams = slices.Delete(s.data.Seams, i, i+1)
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) seamIndexByName(name string) int {
	return slices.IndexFunc(s.data.Seams, func(c storage.Seam) bool { return strings.EqualFold(c.Name, name) })
}

// addMissingSeams must be called with the write lock held.
func (s *Store) addMissingSeams(entries []storage.TemplateEntry) {
	for _, e := range entries {
		if s.seamIndexByName(e.Seam) < 0 {
			s.data.Seams = append(s.data.Seams, storage.Seam{ID: s.nextID(&s.data.SeamCounter), Name: e.Seam})
		}
	}
}

// Templates returns every garment template keyed by garment id.
func (s *Store) Templates() map[int64][]storage.TemplateEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64][]storage.TemplateEntry, len(s.data.Templates))
	for k, v := range s.data.Templates {
		out[k] = slices.Clone(v)
	}
	return out
}

func (s *Store) Template(garmentID int64) []storage.TemplateEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Templates[garmentID])
}

// ReplaceTemplate sets the whole template of a garment; new seam names join the catalog.
func (s *Store) ReplaceTemplate(garmentID int64, entries []storage.TemplateEntry) []storage.TemplateEntry {
	entries = slices.Clone(entries)

	s.mu.Lock()
	s.data.Templates[garmentID] = entries
	s.addMissingSeams(entries)
	s.mu.Unlock()

	s.notify()
	return slices.Clone(entries)
}

func (s *Store) AppendTemplate(garmentID int64, entry storage.TemplateEntry) []storage.TemplateEntry {
	s.mu.Lock()
	s.data.Templates[garmentID] = append(s.data.Templates[garmentID], entry)
	s.addMissingSeams([]storage.TemplateEntry{entry})
	out := slices.Clone(s.data.Templates[garmentID])
	s.mu.Unlock()

	s.notify()
	return out
}

// SeedTemplates installs templates for garments that have none yet.
func (s *Store) SeedTemplates(templates map[int64][]storage.TemplateEntry) {
	s.mu.Lock()
	keys := slices.Sorted(maps.Keys(templates))
	for _, k := range keys {
		if len(s.data.Templates[k]) > 0 {
			continue
		}
		s.data.Templates[k] = slices.Clone(templates[k])
		s.addMissingSeams(templates[k])
	}
	s.mu.Unlock()

	s.notify()
}

func (s *Store) Machines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.Machines)
}

// AddMachine is a no-op for names already present.
func (s *Store) AddMachine(name string) []string {
	s.mu.Lock()
	added := !slices.Contains(s.data.Machines, name)
	if added {
		s.data.Machines = append(s.data.Machines, name)
	}
	out := slices.Clone(s.data.Machines)
	s.mu.Unlock()

	if added {
		s.notify()
	}
	return out
}

func (s *Store) DeleteMachine(name string) ([]string, error) {
	s.mu.Lock()
	i := slices.Index(s.data.Machines, name)
	if i < 0 {
		s.mu.Unlock()
		return nil, apperr.NotFound("machine", name)
	}
	s.data.Machines = slices.Delete(s.data.Machines, i, i+1)
	out := slices.Clone(s.data.Machines)
	s.mu.Unlock()

	s.notify()
	return out, nil
}
