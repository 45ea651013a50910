package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

var defaultGarments = []string{
	"Playera polo",
	"Playera deportiva",
	"Pants",
	"Chamarra",
	"Pantalón gala",
	"Camisa gala",
	"Short deportivo",
	"Short gala",
	"Falda",
	"Short falda",
	"Yumper",
	"Blusa",
	"Bata",
}

var defaultMachines = []string{"Recta", "Over", "Collareta", "Otra"}

type machineSeams struct {
	machine string
	seams   []string
}

var (
	shortSeams = []machineSeams{
		{"Recta", []string{"pegar bolsa", "pespunte corte de franja", "pespuntes costado", "pespuntes tiro", "pespuntes completos", "pegar etiqueta y talla"}},
		{"Recta doble aguja", []string{"pespunte franja", "pespuntes costado", "pespuntes tiro", "pespuntes completos"}},
		{"Overlock", []string{"armar prenda completa"}},
		{"Multiagujas", []string{"resorte", "pegar bies"}},
	}
	jacketRecta  = []string{"pegar bolsa", "pespuntes manga", "pespuntes frente", "pespuntes espalda", "pespuntes sisas", "cerrar cuello con etiqueta", "cerrar cuello sin etiqueta", "pespunte de cierre", "pegar cierre", "bastilla cintura", "bastilla puños", "terminado completo"}
	trouserRecta = []string{"armar carterita", "pegar carterita", "pegar cierre", "bolsa delantera", "bolsa trasera", "bastilla", "pegar presillas", "cierre", "bolsas y carterita", "bastilla presillas y pretina", "cerrar pretina y etiqueta", "completo"}
	shirtRecta   = []string{"armar cuello", "pespunte de hombros", "pespuntes canesú", "armar puños", "aletilla puños", "aletilla frente", "pespuntes mangas", "cerrar cuello y etiqueta", "pespunte cuello", "dobladillo", "completa"}
)

// defaultTemplates is keyed by garment name so it does not depend on seeded ids.
var defaultTemplates = map[string][]machineSeams{
	"Pants": append(append([]machineSeams{}, shortSeams...),
		machineSeams{"Collareta", []string{"bastilla"}}),
	"Chamarra": {
		{"Overlock", []string{"armar prenda completa"}},
		{"Recta", jacketRecta},
		{"Recta doble aguja", jacketRecta},
		{"Multiagujas", []string{"pegar cinta mangas", "pegar cinta frente", "pegar cinta espalda", "pegar cinta completo"}},
	},
	"Playera deportiva": {
		{"Overlock", []string{"armado completo"}},
		{"Recta", []string{"pespuntes frente", "pespuntes manga", "pespuntes espalda", "pespuntes hombro", "pespuntes puños", "pespunte cuello y etiqueta", "pegar etiqueta y talla", "pespunte cuello", "tapacostura y etiqueta", "tapacostura", "fijar cuello v"}},
		{"Collareta", []string{"bastilla puños", "bastilla cintura", "pespunte manga", "pespunte frente", "pespuntes sisas"}},
		{"Multiagujas", []string{"pegar bies"}},
		{"Recta doble aguja", []string{"tapacostura y etiqueta"}},
	},
	"Playera polo": {
		{"Recta", []string{"pegar aletilla", "pespuntes hombros", "pespunte puños", "pespunte mangas", "pespunte frente", "pespunte espalda", "tapacostura y pespunte de aletilla", "remate puño", "costura completa"}},
		{"Collareta", []string{"bastilla puños", "bastilla cintura"}},
		{"Multiagujas", []string{"pegar bies"}},
		{"Overlock", []string{"armado completo"}},
	},
	"Short deportivo": append(append([]machineSeams{}, shortSeams...),
		machineSeams{"Collareta", []string{"bastilla", "pespuntes costado", "pespunte tiro"}}),
	"Falda": {
		{"Overlock", []string{"orlear piezas", "armar completa"}},
		{"Recta", []string{"tablas delantero", "pinzas espalda", "armar cadera", "armar flecha", "pegar flecha", "pespuntes cadera", "bastilla", "pegar cierre", "armar pretina y talla", "pegar talla", "hacer bolsa", "hacer corte delantero", "tablas trasero", "completa"}},
	},
	"Yumper": {
		{"Overlock", []string{"armar peto", "orlear falda", "orlear peto"}},
		{"Recta", []string{"tablas delanteras", "tablas traseras", "cierre", "bastilla", "armar pretina", "armar peto", "pespuntes peto", "armar cuello", "pespuntes de cuello", "pespuntes de sisa", "armar cinto", "pinzas frente peto", "pinzas traseras peto"}},
	},
	"Camisa gala": {
		{"Overlock", []string{"prenda completa"}},
		{"Recta", shirtRecta},
	},
	"Short gala": {
		{"Overlock", []string{"prenda completa"}},
		{"Recta", trouserRecta},
		{"Collareta", []string{"hacer presillas"}},
	},
	"Pantalón gala": {
		{"Overlock", []string{"prenda completa"}},
		{"Recta", trouserRecta},
		{"Collareta", []string{"hacer presillas"}},
	},
	"Short falda": {
		{"Overlock", []string{"prenda completa", "short", "falda"}},
		{"Recta", []string{"pespuntes costado", "pespuntes tiro", "pespuntes completos", "cerrar pretina y etiqueta", "etiqueta y talla", "bastilla", "fijar bolsa", "completo"}},
		{"Collareta", []string{"bastilla"}},
		{"Multiagujas", []string{"resorte"}},
	},
	"Blusa": {
		{"Overlock", []string{"completo"}},
		{"Recta", append(append([]string{}, shirtRecta...), "pespuntes puño")},
	},
	"Bata": {
		{"Overlock", []string{"completa"}},
		{"Recta", []string{"armar cintas", "pegar cinta", "remates cintas", "remate cuello"}},
	},
}

// SeedOptions carries the initial staff passwords.
type SeedOptions struct {
	AdminPassword      string
	SupervisorPassword string
}

// Seed fills whatever part of the catalog is still empty: garments, machines,
// templates and the two staff accounts. Existing data is never touched.
func (s *Service) Seed(ctx context.Context, opts SeedOptions) error {
	const op = "service.catalog.Seed"

	log := s.log.With(slog.String("op", op))

	if len(s.storage.Garments()) == 0 {
		for _, name := range defaultGarments {
			if _, err := s.storage.CreateGarment(name); err != nil {
				return fmt.Errorf("%s: garment %q: %w", op, name, err)
			}
		}
		log.Info("default garments seeded", slog.Int("count", len(defaultGarments)))
	}

	if len(s.storage.Machines()) == 0 {
		for _, m := range defaultMachines {
			s.storage.AddMachine(m)
		}
	}

	if len(s.storage.Templates()) == 0 {
		templates := make(map[int64][]storage.TemplateEntry)
		for _, g := range s.storage.Garments() {
			groups, ok := defaultTemplates[g.Name]
			if !ok {
				continue
			}
			for _, group := range groups {
				for _, seam := range group.seams {
					templates[g.ID] = append(templates[g.ID], storage.TemplateEntry{Seam: seam, Machine: group.machine})
				}
			}
		}
		s.storage.SeedTemplates(templates)
		log.Info("default templates seeded", slog.Int("garments", len(templates)))
	}

	staff := []struct {
		kind     storage.StaffKind
		password string
	}{
		{storage.StaffAdmin, opts.AdminPassword},
		{storage.StaffSupervisor, opts.SupervisorPassword},
	}
	for _, u := range staff {
		if _, err := s.storage.StaffUser(u.kind); err == nil {
			continue
		}
		if u.password == "" {
			log.Warn("no seed password, staff account not created", slog.String("kind", string(u.kind)))
			continue
		}
		hashed, err := s.hash(u.password)
		if err != nil {
			return fmt.Errorf("%s: hash password: %w", op, err)
		}
		s.storage.PutStaffUser(storage.StaffUser{Name: string(u.kind), Password: hashed, Kind: u.kind})
	}
	return nil
}
