package catalog

import (
	"context"
	"strings"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

func (s *Service) Garments() []storage.Garment {
	return s.storage.Garments()
}

func (s *Service) CreateGarment(ctx context.Context, name string) (storage.Garment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Garment{}, apperr.Validation("nombre is required")
	}
	return s.storage.CreateGarment(name)
}

func (s *Service) DeleteGarment(ctx context.Context, id int64) error {
	return s.storage.DeleteGarment(id)
}

func (s *Service) Seams() []storage.Seam {
	return s.storage.Seams()
}

func (s *Service) CreateSeam(ctx context.Context, name string) (storage.Seam, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Seam{}, apperr.Validation("nombre is required")
	}
	return s.storage.CreateSeam(name)
}

func (s *Service) RenameSeam(ctx context.Context, id int64, name string) (storage.Seam, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Seam{}, apperr.Validation("nombre is required")
	}
	return s.storage.RenameSeam(id, name)
}

func (s *Service) DeleteSeam(ctx context.Context, id int64) error {
	return s.storage.DeleteSeam(id)
}

type Template struct {
	GarmentID  int64                   `json:"prendaId,omitempty"`
	Garment    string                  `json:"prenda"`
	Operations []storage.TemplateEntry `json:"operaciones"`
}

func (s *Service) Template(ctx context.Context, garmentID int64) Template {
	entries := s.storage.Template(garmentID)
	if entries == nil {
		entries = []storage.TemplateEntry{}
	}
	return Template{
		GarmentID:  garmentID,
		Garment:    nameOr(s.garmentNames(), garmentID),
		Operations: entries,
	}
}

// Templates returns every template keyed by garment id.
func (s *Service) Templates(ctx context.Context) map[int64]Template {
	names := s.garmentNames()
	all := s.storage.Templates()
	out := make(map[int64]Template, len(all))
	for id, entries := range all {
		out[id] = Template{Garment: nameOr(names, id), Operations: entries}
	}
	return out
}

// ReplaceTemplate drops entries lacking a seam or a machine.
func (s *Service) ReplaceTemplate(ctx context.Context, garmentID int64, entries []storage.TemplateEntry) ([]storage.TemplateEntry, error) {
	if entries == nil {
		return nil, apperr.Validation("operaciones must be an array")
	}
	clean := make([]storage.TemplateEntry, 0, len(entries))
	for _, e := range entries {
		e.Seam = strings.TrimSpace(e.Seam)
		e.Machine = strings.TrimSpace(e.Machine)
		if e.Seam == "" || e.Machine == "" {
			continue
		}
		clean = append(clean, e)
	}
	return s.storage.ReplaceTemplate(garmentID, clean), nil
}

func (s *Service) AppendTemplate(ctx context.Context, garmentID int64, e storage.TemplateEntry) ([]storage.TemplateEntry, error) {
	e.Seam = strings.TrimSpace(e.Seam)
	e.Machine = strings.TrimSpace(e.Machine)
	if e.Seam == "" || e.Machine == "" {
		return nil, apperr.Validation("costura and maquina are required")
	}
	return s.storage.AppendTemplate(garmentID, e), nil
}

func (s *Service) Machines() []string {
	return s.storage.Machines()
}

func (s *Service) AddMachine(ctx context.Context, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("nombre is required")
	}
	return s.storage.AddMachine(name), nil
}

func (s *Service) DeleteMachine(ctx context.Context, name string) ([]string, error) {
	return s.storage.DeleteMachine(name)
}
