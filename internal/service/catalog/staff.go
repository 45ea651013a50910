package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// ErrBadCredentials is returned for any failed login; it does not say which part was wrong.
var ErrBadCredentials = errors.New("invalid credentials")

var staffLabels = map[storage.StaffKind]string{
	storage.StaffAdmin:      "Administrador",
	storage.StaffSupervisor: "Encargada",
}

// Session is what a successful login reports back to the client.
type Session struct {
	OK         bool   `json:"ok"`
	Role       string `json:"rol"`
	Kind       string `json:"tipo"`
	Name       string `json:"nombre"`
	ID         any    `json:"id"`
	OperatorID int64  `json:"idOperaria,omitempty"`
}

// Login resolves "admin", "encargada" or an operator (by username, name or id).
func (s *Service) Login(ctx context.Context, login, password string) (Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return Session{}, apperr.Validation("usuario and password are required")
	}

	kind := storage.StaffKind(login)
	if label, ok := staffLabels[kind]; ok {
		if _, err := s.StaffLogin(ctx, kind, password); err != nil {
			return Session{}, err
		}
		return Session{OK: true, Role: login, Kind: login, Name: label, ID: login}, nil
	}

	o, ok := s.findOperatorLogin(login)
	if !ok || !passwordMatches(o.Password, password) {
		return Session{}, ErrBadCredentials
	}
	role := o.Role
	if role == "" {
		role = storage.RoleOperator
	}
	return Session{
		OK:         true,
		Role:       role,
		Kind:       storage.RoleOperator,
		Name:       o.Name,
		ID:         o.ID,
		OperatorID: o.ID,
	}, nil
}

// StaffLogin checks the password of a back-office account.
func (s *Service) StaffLogin(ctx context.Context, kind storage.StaffKind, password string) (storage.StaffUser, error) {
	u, err := s.storage.StaffUser(kind)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return storage.StaffUser{}, ErrBadCredentials
		}
		return storage.StaffUser{}, err
	}
	if !passwordMatches(u.Password, password) {
		return storage.StaffUser{}, ErrBadCredentials
	}
	u.Password = ""
	return u, nil
}

type StaffPatch struct {
	Name     string `json:"nombre,omitempty"`
	Password string `json:"password,omitempty"`
}

func (s *Service) UpdateStaff(ctx context.Context, kind storage.StaffKind, p StaffPatch) (storage.StaffUser, error) {
	const op = "service.catalog.UpdateStaff"

	if p.Name == "" && p.Password == "" {
		return storage.StaffUser{}, apperr.Validation("nombre or password is required")
	}
	u, err := s.storage.StaffUser(kind)
	if err != nil {
		return storage.StaffUser{}, err
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Password != "" {
		hashed, err := s.hash(p.Password)
		if err != nil {
			return storage.StaffUser{}, fmt.Errorf("%s: hash password: %w", op, err)
		}
		u.Password = hashed
	}

	saved := s.storage.PutStaffUser(u)
	saved.Password = ""
	return saved, nil
}
