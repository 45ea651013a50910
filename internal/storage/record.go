package storage

import (
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/money"
)

// Record is one logged instance of an operator completing pieces.
type Record struct {
	ID            int64         `json:"id"`
	OperatorID    int64         `json:"operariaId"`
	OrderID       int64         `json:"pedidoId"`
	GarmentID     *int64        `json:"prendaId"`
	OperationID   *int64        `json:"operacionId"`
	Size          *string       `json:"talla"`
	Machine       string        `json:"maquina"`
	Description   string        `json:"descripcion"`
	Quantity      int           `json:"cantidad"`
	UnitPrice     float64       `json:"pagoPorPieza"`
	Total         float64       `json:"totalGanado"`
	CreatedAt     time.Time     `json:"fecha"`
	Source        Source        `json:"fuente"`
	PaymentStatus PaymentStatus `json:"estadoPago"`
	PaidWeek      *string       `json:"semanaPago"`
	PaidAt        *time.Time    `json:"fechaPago"`
}

func (r *Record) Recompute() {
	r.Total = money.Total(r.Quantity, r.UnitPrice)
}

func (r Record) HasOperation(opID int64) bool {
	return r.OperationID != nil && *r.OperationID == opID
}

func (r Record) SizeLabel() string {
	if r.Size == nil {
		return ""
	}
	return *r.Size
}

func (r Record) Clone() Record {
	c := r
	if r.GarmentID != nil {
		v := *r.GarmentID
		c.GarmentID = &v
	}
	if r.OperationID != nil {
		v := *r.OperationID
		c.OperationID = &v
	}
	if r.Size != nil {
		v := *r.Size
		c.Size = &v
	}
	if r.PaidWeek != nil {
		v := *r.PaidWeek
		c.PaidWeek = &v
	}
	if r.PaidAt != nil {
		v := *r.PaidAt
		c.PaidAt = &v
	}
	return c
}

// MarkPaid performs the one-way pending -> paid transition.
func (r *Record) MarkPaid(week string, at time.Time) bool {
	if r.PaymentStatus == PaymentPaid {
		return false
	}
	r.PaymentStatus = PaymentPaid
	r.PaidWeek = &week
	r.PaidAt = &at
	return true
}
