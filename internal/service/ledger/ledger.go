// Package ledger records production and moves it from pending to paid.
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/calendar"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/money"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/metrics"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/progress"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

const notAvailable = "N/A"

type Storage interface {
	Operator(id int64) (storage.Operator, error)
	Operators() []storage.Operator
	Order(id int64) (storage.Order, error)
	Orders() []storage.Order
	Garments() []storage.Garment
	Records(match func(storage.Record) bool) []storage.Record
	Record(id int64) (storage.Record, error)
	InsertRecord(r storage.Record) storage.Record
	UpdateRecord(id int64, fn func(*storage.Record) error) (storage.Record, error)
	UpdateRecords(match func(storage.Record) bool, fn func(*storage.Record) bool) []storage.Record
	DeleteRecord(id int64) error
}

type Service struct {
	log     *slog.Logger
	storage Storage
	cal     *calendar.Resolver
	metrics *metrics.LedgerMetrics
	locks   *orderLocks
	now     func() time.Time
}

func New(log *slog.Logger, storage Storage, cal *calendar.Resolver, m *metrics.LedgerMetrics) *Service {
	return &Service{
		log:     log,
		storage: storage,
		cal:     cal,
		metrics: m,
		locks:   newOrderLocks(),
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Calendar() *calendar.Resolver { return s.cal }

type CreateInput struct {
	OperatorID  int64   `json:"operariaId" validate:"required,gt=0"`
	OrderID     int64   `json:"pedidoId" validate:"required,gt=0"`
	GarmentID   *int64  `json:"prendaId,omitempty"`
	OperationID *int64  `json:"operacionId,omitempty"`
	Size        *string `json:"talla,omitempty"`
	Machine     string  `json:"maquina,omitempty"`
	Description string  `json:"descripcion,omitempty"`
	Quantity    int     `json:"cantidad" validate:"required,gt=0"`
	UnitPrice   float64 `json:"pagoPorPieza,omitempty" validate:"gte=0"`
	Source      string  `json:"fuente,omitempty" validate:"omitempty,oneof=operaria encargada"`
}

// Create validates and inserts a pending record. Records tied to an
// operation take machine, description, price and garment from it and are
// checked against the operation's remaining capacity under the order lock.
func (s *Service) Create(ctx context.Context, in CreateInput) (storage.Record, error) {
	const op = "service.ledger.Create"

	log := s.log.With(slog.String("op", op))

	if in.OperatorID <= 0 || in.OrderID <= 0 {
		return storage.Record{}, apperr.Validation("operariaId and pedidoId are required")
	}
	if in.Quantity <= 0 {
		return storage.Record{}, apperr.Validation("cantidad must be greater than 0").With("cantidad", in.Quantity)
	}
	source, err := storage.ParseSource(in.Source)
	if err != nil {
		return storage.Record{}, apperr.Validation("%s", err.Error()).With("fuente", in.Source)
	}
	if _, err := s.storage.Operator(in.OperatorID); err != nil {
		return storage.Record{}, err
	}

	unlock := s.locks.Lock(in.OrderID)
	defer unlock()

	order, err := s.storage.Order(in.OrderID)
	if err != nil {
		return storage.Record{}, err
	}

	r := storage.Record{
		OperatorID:  in.OperatorID,
		OrderID:     in.OrderID,
		GarmentID:   positive(in.GarmentID),
		OperationID: positive(in.OperationID),
		Size:        trimmed(in.Size),
		Machine:     strings.TrimSpace(in.Machine),
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Source:      source,
	}

	if r.OperationID != nil {
		item, operation, ok := order.FindOperation(*r.OperationID)
		if !ok {
			return storage.Record{}, apperr.NotFound("operation", *r.OperationID).With("orderId", in.OrderID)
		}
		if operation.Machine != "" {
			r.Machine = operation.Machine
		}
		if operation.Seam != "" {
			r.Description = operation.Seam
		}
		if operation.Price > 0 {
			r.UnitPrice = operation.Price
		}
		if item.GarmentID > 0 {
			g := item.GarmentID
			r.GarmentID = &g
		}

		records := s.storage.Records(func(rec storage.Record) bool { return rec.OrderID == in.OrderID })
		c := progress.ComputeCapacity(in.OrderID, item, *r.OperationID, r.SizeLabel(), records)
		if err := c.Check(r.Quantity); err != nil {
			s.metrics.IncCapacityRejected()
			log.Info("capacity exceeded",
				slog.Int64("pedidoId", in.OrderID),
				slog.Int64("opId", *r.OperationID),
				slog.Int("requested", r.Quantity),
				slog.Int("remaining", c.Remaining),
			)
			return storage.Record{}, err
		}
	}

	if r.Machine == "" || r.Description == "" {
		return storage.Record{}, apperr.Validation("maquina and descripcion are required")
	}

	r.CreatedAt = s.now().UTC()
	r.PaymentStatus = storage.PaymentPending
	r.Recompute()

	created := s.storage.InsertRecord(r)
	s.metrics.IncCreated(string(source))

	log.Debug("record created", slog.Int64("id", created.ID), slog.Float64("total", created.Total))

	return created, nil
}

// Patch carries the fields to change. Nil means untouched; a zero GarmentID
// or an empty Size clears the value.
type Patch struct {
	OrderID     *int64   `json:"pedidoId,omitempty"`
	GarmentID   *int64   `json:"prendaId,omitempty"`
	Size        *string  `json:"talla,omitempty"`
	Machine     *string  `json:"maquina,omitempty"`
	Description *string  `json:"descripcion,omitempty"`
	Quantity    *int     `json:"cantidad,omitempty"`
	UnitPrice   *float64 `json:"pagoPorPieza,omitempty"`
	Total       *float64 `json:"totalGanado,omitempty"`
}

// Update applies p and recomputes the total unless p sets it.
// An operation-linked record is capacity-checked again when its quantity
// grows or it moves to another size or order.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (storage.Record, error) {
	const op = "service.ledger.Update"

	if p.Quantity != nil && *p.Quantity <= 0 {
		return storage.Record{}, apperr.Validation("cantidad must be greater than 0").With("cantidad", *p.Quantity)
	}
	if p.UnitPrice != nil && *p.UnitPrice < 0 {
		return storage.Record{}, apperr.Validation("pagoPorPieza must not be negative")
	}
	if p.OrderID != nil {
		if _, err := s.storage.Order(*p.OrderID); err != nil {
			return storage.Record{}, err
		}
	}

	cur, unlock, err := s.lockRecord(id, p.OrderID)
	if err != nil {
		return storage.Record{}, err
	}
	defer unlock()

	orderID := cur.OrderID
	if p.OrderID != nil {
		orderID = *p.OrderID
	}

	if cur.OperationID != nil {
		quantity := cur.Quantity
		if p.Quantity != nil {
			quantity = *p.Quantity
		}
		moved := orderID != cur.OrderID
		if moved || quantity > cur.Quantity || size(cur, p) != cur.SizeLabel() {
			if err := s.checkGrowth(id, orderID, *cur.OperationID, size(cur, p), quantity, moved); err != nil {
				if apperr.IsKind(err, apperr.KindCapacityExceeded) {
					s.metrics.IncCapacityRejected()
				}
				return storage.Record{}, err
			}
		}
	}

	updated, err := s.storage.UpdateRecord(id, func(r *storage.Record) error {
		r.OrderID = orderID
		if p.GarmentID != nil {
			r.GarmentID = positive(p.GarmentID)
		}
		if p.Size != nil {
			r.Size = trimmed(p.Size)
		}
		if p.Machine != nil {
			r.Machine = strings.TrimSpace(*p.Machine)
		}
		if p.Description != nil {
			r.Description = strings.TrimSpace(*p.Description)
		}
		if p.Quantity != nil {
			r.Quantity = *p.Quantity
		}
		if p.UnitPrice != nil {
			r.UnitPrice = *p.UnitPrice
		}
		if p.Total != nil {
			r.Total = *p.Total
		} else {
			r.Recompute()
		}
		return nil
	})
	if err != nil {
		return storage.Record{}, err
	}

	s.log.Debug("record updated", slog.String("op", op), slog.Int64("id", id))
	return updated, nil
}

// lockRecord locks the record's current order and the target order, lowest
// id first, and returns the record as read under those locks.
func (s *Service) lockRecord(id int64, target *int64) (storage.Record, func(), error) {
	for {
		cur, err := s.storage.Record(id)
		if err != nil {
			return storage.Record{}, nil, err
		}

		ids := []int64{cur.OrderID}
		if target != nil && *target != cur.OrderID {
			ids = append(ids, *target)
			if ids[1] < ids[0] {
				ids[0], ids[1] = ids[1], ids[0]
			}
		}
		unlocks := make([]func(), 0, len(ids))
		for _, orderID := range ids {
			unlocks = append(unlocks, s.locks.Lock(orderID))
		}
		unlock := func() {
			for i := len(unlocks) - 1; i >= 0; i-- {
				unlocks[i]()
			}
		}

		fresh, err := s.storage.Record(id)
		if err != nil {
			unlock()
			return storage.Record{}, nil, err
		}
		if fresh.OrderID == cur.OrderID {
			return fresh, unlock, nil
		}
		unlock()
	}
}

// checkGrowth measures capacity without the record being edited. A record
// moved to another order must reference an operation of that order.
func (s *Service) checkGrowth(id, orderID, opID int64, size string, quantity int, moved bool) error {
	order, err := s.storage.Order(orderID)
	if err != nil {
		return err
	}
	item, _, ok := order.FindOperation(opID)
	if !ok {
		if moved {
			return apperr.Validation("operacionId %d does not belong to pedido %d", opID, orderID).
				With("operacionId", opID).
				With("pedidoId", orderID)
		}
		return nil
	}
	others := s.storage.Records(func(r storage.Record) bool { return r.OrderID == orderID && r.ID != id })
	return progress.ComputeCapacity(orderID, item, opID, size, others).Check(quantity)
}

func size(cur storage.Record, p Patch) string {
	if p.Size != nil {
		return strings.TrimSpace(*p.Size)
	}
	return cur.SizeLabel()
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.storage.DeleteRecord(id)
}

type Filter struct {
	Day        string
	Week       calendar.Week
	OperatorID int64
	OrderID    int64
	Source     storage.SourceFilter
	Status     storage.PaymentFilter
}

func (f Filter) match(cal *calendar.Resolver) func(storage.Record) bool {
	return func(r storage.Record) bool {
		if !f.Status.Matches(r.PaymentStatus) || !f.Source.Matches(r.Source) {
			return false
		}
		if f.OperatorID != 0 && r.OperatorID != f.OperatorID {
			return false
		}
		if f.OrderID != 0 && r.OrderID != f.OrderID {
			return false
		}
		if f.Day != "" && cal.LocalDay(r.CreatedAt) != f.Day {
			return false
		}
		if !f.Week.IsZero() && !f.Week.Contains(r.CreatedAt) {
			return false
		}
		return true
	}
}

// Select returns raw records matching f. An empty status matches every record.
func (s *Service) Select(f Filter) []storage.Record {
	return s.storage.Records(f.match(s.cal))
}

// Entry is a record joined with display names at read time.
type Entry struct {
	storage.Record
	OperatorName string `json:"operariaNombre"`
	School       string `json:"escuela"`
	Folio        string `json:"folio"`
	OrderStatus  string `json:"pedidoEstado"`
	Garment      string `json:"prenda"`
}

// Query lists records for display. Status defaults to pending.
func (s *Service) Query(ctx context.Context, f Filter) ([]Entry, error) {
	if f.Status == "" {
		f.Status = storage.PaymentFilter(storage.PaymentPending)
	}
	if f.Day != "" {
		if _, err := s.cal.ParseDay(f.Day); err != nil {
			return nil, err
		}
	}
	return s.Enrich(s.Select(f)), nil
}

// Enrich joins operator, order and garment names onto records.
func (s *Service) Enrich(records []storage.Record) []Entry {
	operators := make(map[int64]string)
	for _, o := range s.storage.Operators() {
		operators[o.ID] = o.Name
	}
	orders := make(map[int64]storage.Order)
	for _, o := range s.storage.Orders() {
		orders[o.ID] = o
	}
	garments := make(map[int64]string)
	for _, g := range s.storage.Garments() {
		garments[g.ID] = g.Name
	}

	out := make([]Entry, 0, len(records))
	for _, r := range records {
		e := Entry{
			Record:       r,
			OperatorName: notAvailable,
			School:       notAvailable,
			Folio:        notAvailable,
			OrderStatus:  notAvailable,
			Garment:      notAvailable,
		}
		if n, ok := operators[r.OperatorID]; ok {
			e.OperatorName = n
		}
		if o, ok := orders[r.OrderID]; ok {
			e.School = o.School
			e.Folio = o.Folio
			e.OrderStatus = string(o.Status)
			if e.OrderStatus == "" {
				e.OrderStatus = string(storage.OrderActive)
			}
		}
		if r.GarmentID != nil {
			if n, ok := garments[*r.GarmentID]; ok {
				e.Garment = n
			}
		}
		out = append(out, e)
	}
	return out
}

type MarkPaidInput struct {
	WeekCode   string              `json:"semanaCodigo,omitempty"`
	Day        string              `json:"fecha,omitempty"`
	OperatorID int64               `json:"operariaId,omitempty"`
	Source     storage.SourceFilter `json:"fuente,omitempty"`
}

type MarkPaidResult struct {
	Week    calendar.Week
	Records int
	Total   float64
	PaidAt  time.Time
}

// MarkWeekPaid moves pending records of the week to paid. Records already
// paid are left alone, so repeating the call affects nothing.
func (s *Service) MarkWeekPaid(ctx context.Context, in MarkPaidInput) (MarkPaidResult, error) {
	const op = "service.ledger.MarkWeekPaid"

	week, err := s.cal.Resolve(in.WeekCode, in.Day)
	if err != nil {
		return MarkPaidResult{}, err
	}
	if in.Source != "" && in.Source != storage.FilterAll && !storage.Source(in.Source).IsValid() {
		return MarkPaidResult{}, apperr.Validation("invalid source %q", in.Source).With("fuente", in.Source)
	}

	match := Filter{
		Week:       week,
		OperatorID: in.OperatorID,
		Source:     in.Source,
		Status:     storage.PaymentFilter(storage.PaymentPending),
	}.match(s.cal)

	paidAt := s.now().UTC()
	changed := s.storage.UpdateRecords(match, func(r *storage.Record) bool {
		return r.MarkPaid(week.Code, paidAt)
	})

	var total money.Accumulator
	for _, r := range changed {
		total.Add(r.Total)
	}
	res := MarkPaidResult{Week: week, Records: len(changed), Total: total.Float(), PaidAt: paidAt}

	s.metrics.AddPaid(res.Records, res.Total)
	s.log.Info("week marked paid",
		slog.String("op", op),
		slog.String("semana", week.Code),
		slog.Int64("operariaId", in.OperatorID),
		slog.Int("registros", res.Records),
		slog.Float64("total", res.Total),
	)

	return res, nil
}

func positive(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	c := *v
	return &c
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
