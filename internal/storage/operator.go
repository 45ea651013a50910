package storage

type Operator struct {
	ID           int64   `json:"id"`
	Name         string  `json:"nombre"`
	Username     string  `json:"usuario"`
	Password     string  `json:"password,omitempty"`
	Role         string  `json:"rol"`
	DefaultPrice float64 `json:"pagoPorPrenda"`
	Active       bool    `json:"activa"`
}

const RoleOperator = "operaria"

// StaffKind distinguishes the two back-office accounts.
type StaffKind string

const (
	StaffAdmin      StaffKind = "admin"
	StaffSupervisor StaffKind = "encargada"
)

type StaffUser struct {
	ID       int64     `json:"id"`
	Name     string    `json:"nombre"`
	Password string    `json:"password,omitempty"`
	Kind     StaffKind `json:"tipo"`
}
