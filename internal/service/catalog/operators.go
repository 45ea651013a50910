package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// Operators lists every operator without the password hash.
func (s *Service) Operators() []storage.Operator {
	ops := s.storage.Operators()
	for i := range ops {
		ops[i].Password = ""
	}
	return ops
}

type OperatorInput struct {
	Name         string   `json:"nombre" validate:"required"`
	Password     string   `json:"password" validate:"required"`
	Username     string   `json:"usuario,omitempty"`
	Role         string   `json:"rol,omitempty"`
	DefaultPrice *float64 `json:"pagoPorPrenda,omitempty" validate:"omitempty,gte=0"`
	Active       *bool    `json:"activa,omitempty"`
}

func (s *Service) CreateOperator(ctx context.Context, in OperatorInput) (storage.Operator, error) {
	const op = "service.catalog.CreateOperator"

	name := strings.TrimSpace(in.Name)
	password := strings.TrimSpace(in.Password)
	if name == "" {
		return storage.Operator{}, apperr.Validation("nombre is required")
	}
	if password == "" {
		return storage.Operator{}, apperr.Validation("password is required")
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = name
	}

	hashed, err := s.hash(password)
	if err != nil {
		return storage.Operator{}, fmt.Errorf("%s: hash password: %w", op, err)
	}

	o := storage.Operator{
		Name:     name,
		Username: strings.ToLower(username),
		Password: hashed,
		Role:     in.Role,
		Active:   true,
	}
	if o.Role == "" {
		o.Role = storage.RoleOperator
	}
	if in.DefaultPrice != nil {
		o.DefaultPrice = *in.DefaultPrice
	}
	if in.Active != nil {
		o.Active = *in.Active
	}

	created := s.storage.CreateOperator(o)
	s.log.Info("operator created", slog.String("op", op), slog.Int64("id", created.ID))
	created.Password = ""
	return created, nil
}

// OperatorPatch only applies non-empty fields.
type OperatorPatch struct {
	Name         *string  `json:"nombre,omitempty"`
	Password     *string  `json:"password,omitempty"`
	Username     *string  `json:"usuario,omitempty"`
	Role         *string  `json:"rol,omitempty"`
	DefaultPrice *float64 `json:"pagoPorPrenda,omitempty" validate:"omitempty,gte=0"`
	Active       *bool    `json:"activa,omitempty"`
}

func (s *Service) UpdateOperator(ctx context.Context, id int64, p OperatorPatch) (storage.Operator, error) {
	const op = "service.catalog.UpdateOperator"

	var hashed string
	if p.Password != nil && strings.TrimSpace(*p.Password) != "" {
		h, err := s.hash(strings.TrimSpace(*p.Password))
		if err != nil {
			return storage.Operator{}, fmt.Errorf("%s: hash password: %w", op, err)
		}
		hashed = h
	}

	updated, err := s.storage.UpdateOperator(id, func(o *storage.Operator) error {
		if v := nonBlank(p.Name); v != "" {
			o.Name = v
		}
		if hashed != "" {
			o.Password = hashed
		}
		if v := nonBlank(p.Username); v != "" {
			o.Username = strings.ToLower(v)
		}
		if v := nonBlank(p.Role); v != "" {
			o.Role = v
		}
		if p.DefaultPrice != nil {
			o.DefaultPrice = *p.DefaultPrice
		}
		if p.Active != nil {
			o.Active = *p.Active
		}
		return nil
	})
	if err != nil {
		return storage.Operator{}, err
	}
	updated.Password = ""
	return updated, nil
}

func (s *Service) DeleteOperator(ctx context.Context, id int64) error {
	return s.storage.DeleteOperator(id)
}

// AuthenticateOperator checks an operator's password by id.
func (s *Service) AuthenticateOperator(ctx context.Context, id int64, password string) (storage.Operator, error) {
	o, err := s.storage.Operator(id)
	if err != nil {
		return storage.Operator{}, err
	}
	if !passwordMatches(o.Password, password) {
		return storage.Operator{}, ErrBadCredentials
	}
	o.Password = ""
	return o, nil
}

// findOperatorLogin matches username, case-insensitive name or id, in that order of fields.
func (s *Service) findOperatorLogin(login string) (storage.Operator, bool) {
	for _, o := range s.storage.Operators() {
		if (o.Username != "" && o.Username == login) ||
			strings.EqualFold(o.Name, login) ||
			strconv.FormatInt(o.ID, 10) == login {
			return o, true
		}
	}
	return storage.Operator{}, false
}

func nonBlank(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
