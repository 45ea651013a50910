// Package reports builds read-only views over the ledger and settlement.
package reports

import (
	"context"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/calendar"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/money"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type Ledger interface {
	Select(f ledger.Filter) []storage.Record
	Enrich(records []storage.Record) []ledger.Entry
	Calendar() *calendar.Resolver
}

type Settlement interface {
	SummarizeOrders(ctx context.Context, orders []storage.Order) map[int64]settlement.OrderTotals
}

type Storage interface {
	Operator(id int64) (storage.Operator, error)
	Operators() []storage.Operator
	Orders() []storage.Order
	Garments() []storage.Garment
}

type Service struct {
	ledger     Ledger
	settlement Settlement
	storage    Storage
	cal        *calendar.Resolver
	now        func() time.Time
}

func New(l Ledger, st Settlement, storage Storage) *Service {
	return &Service{ledger: l, settlement: st, storage: storage, cal: l.Calendar(), now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Tally is a record count with its pieces and earnings.
type Tally struct {
	Records int     `json:"registros"`
	Pieces  int     `json:"piezas"`
	Earned  float64 `json:"ganado"`
}

func tally(records []storage.Record) Tally {
	var earned money.Accumulator
	t := Tally{Records: len(records)}
	for _, r := range records {
		t.Pieces += r.Quantity
		earned.Add(r.Total)
	}
	t.Earned = earned.Float()
	return t
}

func (t Tally) minus(o Tally) Tally {
	return Tally{
		Records: t.Records - o.Records,
		Pieces:  t.Pieces - o.Pieces,
		Earned:  money.Sum(t.Earned, -o.Earned),
	}
}

func (t Tally) plus(o Tally) Tally {
	return Tally{
		Records: t.Records + o.Records,
		Pieces:  t.Pieces + o.Pieces,
		Earned:  money.Sum(t.Earned, o.Earned),
	}
}

func splitBySource(records []storage.Record) (operator, supervisor []storage.Record) {
	for _, r := range records {
		if r.Source == storage.SourceSupervisor {
			supervisor = append(supervisor, r)
		} else {
			operator = append(operator, r)
		}
	}
	return operator, supervisor
}

type ProfileOperator struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	Username string `json:"usuario"`
	Role     string `json:"rol"`
	Active   bool   `json:"activa"`
}

type SourceTallies struct {
	Operator   Tally `json:"operaria"`
	Supervisor Tally `json:"encargada"`
}

type Profile struct {
	Operator ProfileOperator `json:"operaria"`
	BySource SourceTallies   `json:"resumenPorFuente"`
	Total    Tally           `json:"totalGeneral"`
	Records  []ledger.Entry  `json:"registros"`
}

// OperatorProfile summarizes an operator's pending records split by source.
func (s *Service) OperatorProfile(ctx context.Context, operatorID int64) (Profile, error) {
	op, err := s.storage.Operator(operatorID)
	if err != nil {
		return Profile{}, err
	}

	records := s.ledger.Select(ledger.Filter{
		OperatorID: operatorID,
		Status:     storage.PaymentFilter(storage.PaymentPending),
	})
	own, sup := splitBySource(records)
	bySource := SourceTallies{Operator: tally(own), Supervisor: tally(sup)}

	return Profile{
		Operator: ProfileOperator{
			ID:       op.ID,
			Name:     op.Name,
			Username: op.Username,
			Role:     op.Role,
			Active:   op.Active,
		},
		BySource: bySource,
		Total:    bySource.Operator.plus(bySource.Supervisor),
		Records:  s.ledger.Enrich(records),
	}, nil
}

type OperatorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type DayTally struct {
	Day string `json:"fecha"`
	Tally
}

type RangeTally struct {
	Code  string `json:"codigo"`
	Start string `json:"inicio"`
	End   string `json:"fin"`
	Tally
}

type Today struct {
	Operator OperatorRef `json:"operaria"`
	Day      DayTally    `json:"dia"`
	Week     RangeTally  `json:"semana"`
}

// OperatorToday totals pending records of today and of the pay week up to today.
func (s *Service) OperatorToday(ctx context.Context, operatorID int64) (Today, error) {
	op, err := s.storage.Operator(operatorID)
	if err != nil {
		return Today{}, err
	}

	now := s.now()
	today := s.cal.LocalDay(now)
	week := s.cal.WeekOf(now)

	pending := s.ledger.Select(ledger.Filter{
		OperatorID: operatorID,
		Week:       week,
		Status:     storage.PaymentFilter(storage.PaymentPending),
	})

	var todays, toDate []storage.Record
	for _, r := range pending {
		day := s.cal.LocalDay(r.CreatedAt)
		if day > today {
			continue
		}
		toDate = append(toDate, r)
		if day == today {
			todays = append(todays, r)
		}
	}

	return Today{
		Operator: OperatorRef{ID: op.ID, Name: op.Name},
		Day:      DayTally{Day: today, Tally: tally(todays)},
		Week:     RangeTally{Code: week.Code, Start: week.StartDay(), End: today, Tally: tally(toDate)},
	}, nil
}

type Headcount struct {
	Total    int `json:"total"`
	Active   int `json:"activas"`
	Inactive int `json:"inactivas"`
}

type OrderCounts struct {
	Total     int `json:"total"`
	Active    int `json:"activos"`
	Completed int `json:"terminados"`
}

type Production struct {
	Records int     `json:"registros"`
	Pieces  int     `json:"piezasTotales"`
	Earned  float64 `json:"totalGanado"`
}

type General struct {
	Operators Headcount   `json:"operarias"`
	Orders    OrderCounts `json:"pedidos"`
	Pending   Production  `json:"produccionPendiente"`
	Overall   Production  `json:"produccionTotal"`
}

func production(records []storage.Record) Production {
	t := tally(records)
	return Production{Records: t.Records, Pieces: t.Pieces, Earned: t.Earned}
}

func (s *Service) General(ctx context.Context) General {
	var g General

	for _, o := range s.storage.Operators() {
		g.Operators.Total++
		if o.Active {
			g.Operators.Active++
		}
	}
	g.Operators.Inactive = g.Operators.Total - g.Operators.Active

	for _, o := range s.storage.Orders() {
		g.Orders.Total++
		if o.Status != storage.OrderCompleted {
			g.Orders.Active++
		}
	}
	g.Orders.Completed = g.Orders.Total - g.Orders.Active

	g.Pending = production(s.ledger.Select(ledger.Filter{Status: storage.PaymentFilter(storage.PaymentPending)}))
	g.Overall = production(s.ledger.Select(ledger.Filter{Status: storage.FilterAll}))
	return g
}

type Comparison struct {
	Status     storage.PaymentFilter `json:"estadoPago"`
	Operator   Tally                 `json:"operarias"`
	Supervisor Tally                 `json:"encargada"`
	Difference Tally                 `json:"diferencia"`
}

// SourceComparison sets operator-entered against supervisor-entered tallies.
func (s *Service) SourceComparison(ctx context.Context, status storage.PaymentFilter) Comparison {
	if status == "" {
		status = storage.PaymentFilter(storage.PaymentPending)
	}
	own, sup := splitBySource(s.ledger.Select(ledger.Filter{Status: status}))
	c := Comparison{Status: status, Operator: tally(own), Supervisor: tally(sup)}
	c.Difference = c.Operator.minus(c.Supervisor)
	return c
}

type OrderTotals struct {
	Pieces        int     `json:"totalPiezas"`
	Paid          float64 `json:"totalPagado"`
	Operators     int     `json:"numeroOperarias"`
	EstimatedCost float64 `json:"costoEstimado"`
}

// OrderView is an order as listed, with optional totals, garment names and breakdown.
type OrderView struct {
	ID          int64               `json:"id"`
	School      string              `json:"escuela"`
	Folio       string              `json:"folio"`
	Garments    any                 `json:"prendas"`
	GarmentIDs  []int64             `json:"prendasIds,omitempty"`
	Items       []storage.OrderItem `json:"items"`
	Status      storage.OrderStatus `json:"estado"`
	CompletedAt *time.Time          `json:"fechaTerminado"`
	PiecePrice  float64             `json:"pagoPorPieza"`
	*OrderTotals
	ByGarment []settlement.GarmentTotal `json:"desglosePrendas,omitempty"`
}

type OrderListing struct {
	Status        string
	WithTotals    bool
	WithGarments  bool
	WithBreakdown bool
}

func (s *Service) Orders(ctx context.Context, q OrderListing) []OrderView {
	orders := make([]storage.Order, 0)
	for _, o := range s.storage.Orders() {
		if q.Status != "" && q.Status != storage.FilterAll && string(o.Status) != q.Status {
			continue
		}
		orders = append(orders, o)
	}

	var totals map[int64]settlement.OrderTotals
	if q.WithTotals || q.WithBreakdown {
		totals = s.settlement.SummarizeOrders(ctx, orders)
	}

	var names map[int64]string
	if q.WithGarments {
		names = make(map[int64]string)
		for _, g := range s.storage.Garments() {
			names[g.ID] = g.Name
		}
	}

	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{
			ID:          o.ID,
			School:      o.School,
			Folio:       o.Folio,
			Garments:    o.Garments,
			Items:       o.Items,
			Status:      o.Status,
			CompletedAt: o.CompletedAt,
			PiecePrice:  o.PiecePrice,
		}
		if q.WithGarments && len(o.Garments) > 0 {
			labels := make([]string, 0, len(o.Garments))
			for _, id := range o.Garments {
				if n, ok := names[id]; ok {
					labels = append(labels, n)
				} else {
					labels = append(labels, "Desconocida")
				}
			}
			v.Garments = labels
			v.GarmentIDs = o.Garments
		}
		if t, ok := totals[o.ID]; ok {
			if q.WithTotals {
				v.OrderTotals = &OrderTotals{
					Pieces:        t.Pieces,
					Paid:          t.Earned,
					Operators:     t.Operators,
					EstimatedCost: t.EstimatedCost,
				}
			}
			if q.WithBreakdown {
				v.ByGarment = t.ByGarment
			}
		}
		out = append(out, v)
	}
	return out
}
