// Package catalog manages the reference data around production: operators,
// orders, garments, seams, templates, machines and staff accounts.
package catalog

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

const unknownGarment = "Desconocida"

type Storage interface {
	Operators() []storage.Operator
	Operator(id int64) (storage.Operator, error)
	CreateOperator(op storage.Operator) storage.Operator
	UpdateOperator(id int64, fn func(*storage.Operator) error) (storage.Operator, error)
	DeleteOperator(id int64) error

	Orders() []storage.Order
	Order(id int64) (storage.Order, error)
	CreateOrder(o storage.Order) storage.Order
	UpdateOrder(id int64, fn func(*storage.Order) error) (storage.Order, error)
	DeleteOrder(id int64) error

	Garments() []storage.Garment
	Garment(id int64) (storage.Garment, error)
	CreateGarment(name string) (storage.Garment, error)
	DeleteGarment(id int64) error

	Seams() []storage.Seam
	CreateSeam(name string) (storage.Seam, error)
	RenameSeam(id int64, name string) (storage.Seam, error)
	DeleteSeam(id int64) error

	Templates() map[int64][]storage.TemplateEntry
	Template(garmentID int64) []storage.TemplateEntry
	ReplaceTemplate(garmentID int64, entries []storage.TemplateEntry) []storage.TemplateEntry
	AppendTemplate(garmentID int64, entry storage.TemplateEntry) []storage.TemplateEntry
	SeedTemplates(templates map[int64][]storage.TemplateEntry)

	Machines() []string
	AddMachine(name string) []string
	DeleteMachine(name string) ([]string, error)

	StaffUsers() []storage.StaffUser
	StaffUser(kind storage.StaffKind) (storage.StaffUser, error)
	PutStaffUser(u storage.StaffUser) storage.StaffUser
}

type Service struct {
	log      *slog.Logger
	storage  Storage
	now      func() time.Time
	hashCost int
}

func New(log *slog.Logger, storage Storage) *Service {
	return &Service{
		log:      log,
		storage:  storage,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetHashCost lowers the bcrypt cost, for tests.
func (s *Service) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// passwordMatches accepts bcrypt hashes and, for data written before hashing
// was introduced, plain-text values.
func passwordMatches(stored, given string) bool {
	if stored == "" || given == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func (s *Service) garmentNames() map[int64]string {
	names := make(map[int64]string)
	for _, g := range s.storage.Garments() {
		names[g.ID] = g.Name
	}
	return names
}

func nameOr(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return unknownGarment
}
