// Package settlement groups ledger records by week, operator and order.
package settlement

import (
	"context"
	"sort"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/calendar"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/money"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

const notAvailable = "N/A"

type Ledger interface {
	Select(f ledger.Filter) []storage.Record
	Enrich(records []storage.Record) []ledger.Entry
	MarkWeekPaid(ctx context.Context, in ledger.MarkPaidInput) (ledger.MarkPaidResult, error)
	Calendar() *calendar.Resolver
}

type Storage interface {
	Operator(id int64) (storage.Operator, error)
	Operators() []storage.Operator
	Order(id int64) (storage.Order, error)
	Orders() []storage.Order
	Garments() []storage.Garment
}

type Service struct {
	ledger  Ledger
	storage Storage
	cal     *calendar.Resolver
	now     func() time.Time
}

func New(l Ledger, storage Storage) *Service {
	return &Service{ledger: l, storage: storage, cal: l.Calendar(), now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Calendar() *calendar.Resolver { return s.cal }

// WeekQuery selects a week by code, or by any day inside it.
type WeekQuery struct {
	WeekCode   string
	Day        string
	OperatorID int64
	Source     storage.SourceFilter
	Status     storage.PaymentFilter
}

type OperatorTotals struct {
	OperatorID int64   `json:"operariaId"`
	Name       string  `json:"nombre"`
	Pieces     int     `json:"piezas"`
	Earned     float64 `json:"ganado"`
	Records    int     `json:"registros"`
}

type WeekReport struct {
	Week      calendar.Week
	Operators []OperatorTotals
}

// SummarizeWeek totals the week per operator, ordered by operator id.
// Source defaults to operator-entered and status to pending.
func (s *Service) SummarizeWeek(ctx context.Context, q WeekQuery) (WeekReport, error) {
	week, records, err := s.weekRecords(q)
	if err != nil {
		return WeekReport{}, err
	}
	return WeekReport{Week: week, Operators: s.byOperator(records)}, nil
}

// WeekEntries returns the records behind SummarizeWeek joined with display names.
func (s *Service) WeekEntries(ctx context.Context, q WeekQuery) (calendar.Week, []ledger.Entry, error) {
	week, records, err := s.weekRecords(q)
	if err != nil {
		return calendar.Week{}, nil, err
	}
	return week, s.ledger.Enrich(records), nil
}

func (s *Service) weekRecords(q WeekQuery) (calendar.Week, []storage.Record, error) {
	week, err := s.cal.Resolve(q.WeekCode, q.Day)
	if err != nil {
		return calendar.Week{}, nil, err
	}
	if q.Source == "" {
		q.Source = storage.SourceFilter(storage.SourceOperator)
	}
	if q.Status == "" {
		q.Status = storage.PaymentFilter(storage.PaymentPending)
	}

	records := s.ledger.Select(ledger.Filter{
		Week:       week,
		OperatorID: q.OperatorID,
		Source:     q.Source,
		Status:     q.Status,
	})
	return week, records, nil
}

func (s *Service) byOperator(records []storage.Record) []OperatorTotals {
	names := make(map[int64]string)
	for _, o := range s.storage.Operators() {
		names[o.ID] = o.Name
	}

	type acc struct {
		row    OperatorTotals
		earned money.Accumulator
	}
	groups := make(map[int64]*acc)
	for _, r := range records {
		g, ok := groups[r.OperatorID]
		if !ok {
			name, found := names[r.OperatorID]
			if !found {
				name = notAvailable
			}
			g = &acc{row: OperatorTotals{OperatorID: r.OperatorID, Name: name}}
			groups[r.OperatorID] = g
		}
		g.row.Pieces += r.Quantity
		g.row.Records++
		g.earned.Add(r.Total)
	}

	out := make([]OperatorTotals, 0, len(groups))
	for _, g := range groups {
		g.row.Earned = g.earned.Float()
		out = append(out, g.row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OperatorID < out[j].OperatorID })
	return out
}

type GarmentTotal struct {
	GarmentID int64   `json:"prendaId"`
	Garment   string  `json:"prenda"`
	Total     float64 `json:"total"`
}

type OrderTotals struct {
	Pieces        int            `json:"totalPiezas"`
	Earned        float64        `json:"totalPagado"`
	Operators     int            `json:"numeroOperarias"`
	EstimatedCost float64        `json:"costoEstimado"`
	ByGarment     []GarmentTotal `json:"desglosePrendas"`
}

// SummarizeOrder counts pending and paid records alike; supervisor records
// are excluded from order economics.
func (s *Service) SummarizeOrder(ctx context.Context, orderID int64) (OrderTotals, error) {
	order, err := s.storage.Order(orderID)
	if err != nil {
		return OrderTotals{}, err
	}
	return s.orderTotals(order, s.storage.Garments()), nil
}

// SummarizeOrders is SummarizeOrder for a batch, keyed by order id.
func (s *Service) SummarizeOrders(ctx context.Context, orders []storage.Order) map[int64]OrderTotals {
	garments := s.storage.Garments()
	out := make(map[int64]OrderTotals, len(orders))
	for _, o := range orders {
		out[o.ID] = s.orderTotals(o, garments)
	}
	return out
}

func (s *Service) orderTotals(order storage.Order, garments []storage.Garment) OrderTotals {
	records := s.ledger.Select(ledger.Filter{
		OrderID: order.ID,
		Source:  storage.SourceFilter(storage.SourceOperator),
		Status:  storage.FilterAll,
	})

	names := make(map[int64]string, len(garments))
	for _, g := range garments {
		names[g.ID] = g.Name
	}

	var earned, estimated money.Accumulator
	operators := make(map[int64]bool)
	byGarment := make(map[int64]*money.Accumulator)
	var garmentOrder []int64
	totals := OrderTotals{}

	for _, r := range records {
		totals.Pieces += r.Quantity
		earned.Add(r.Total)
		operators[r.OperatorID] = true
		if r.GarmentID == nil {
			continue
		}
		acc, ok := byGarment[*r.GarmentID]
		if !ok {
			acc = &money.Accumulator{}
			byGarment[*r.GarmentID] = acc
			garmentOrder = append(garmentOrder, *r.GarmentID)
		}
		acc.Add(r.Total)
	}

	for _, item := range order.Items {
		for _, op := range item.Operations {
			estimated.Add(money.Total(item.Quantity, op.Price))
		}
	}

	totals.Earned = earned.Float()
	totals.Operators = len(operators)
	totals.EstimatedCost = estimated.Float()
	totals.ByGarment = make([]GarmentTotal, 0, len(garmentOrder))
	for _, id := range garmentOrder {
		name, ok := names[id]
		if !ok {
			name = "Desconocida"
		}
		totals.ByGarment = append(totals.ByGarment, GarmentTotal{GarmentID: id, Garment: name, Total: byGarment[id].Float()})
	}
	return totals
}

func (s *Service) MarkPaid(ctx context.Context, in ledger.MarkPaidInput) (ledger.MarkPaidResult, error) {
	return s.ledger.MarkWeekPaid(ctx, in)
}

type WeekTotals struct {
	Code    string  `json:"codigo"`
	Start   string  `json:"inicio"`
	End     string  `json:"fin"`
	Records int     `json:"registros"`
	Total   float64 `json:"totalPagar"`
}

// Weeks lists weeks holding operator-entered records, newest first.
func (s *Service) Weeks(ctx context.Context, status storage.PaymentFilter) []WeekTotals {
	if status == "" {
		status = storage.PaymentFilter(storage.PaymentPending)
	}
	records := s.ledger.Select(ledger.Filter{
		Source: storage.SourceFilter(storage.SourceOperator),
		Status: status,
	})

	type acc struct {
		row   WeekTotals
		total money.Accumulator
	}
	weeks := make(map[string]*acc)
	for _, r := range records {
		w := s.cal.WeekOf(r.CreatedAt)
		a, ok := weeks[w.Code]
		if !ok {
			a = &acc{row: WeekTotals{Code: w.Code, Start: w.StartDay(), End: w.EndDay()}}
			weeks[w.Code] = a
		}
		a.row.Records++
		a.total.Add(r.Total)
	}

	out := make([]WeekTotals, 0, len(weeks))
	for _, a := range weeks {
		a.row.Total = a.total.Float()
		out = append(out, a.row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code > out[j].Code })
	return out
}

type DetailOperator struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type DetailWeek struct {
	Code  string `json:"codigo"`
	Start string `json:"inicio"`
	End   string `json:"fin"`
	Label string `json:"label"`
}

type DetailRecord struct {
	ID          int64   `json:"id"`
	School      string  `json:"escuela"`
	Garment     string  `json:"prenda"`
	Description string  `json:"descripcion"`
	Quantity    int     `json:"cantidad"`
	Machine     string  `json:"maquina"`
	UnitPrice   float64 `json:"pagoPorPieza"`
	Total       float64 `json:"totalGanado"`
}

type DayDetail struct {
	Day      string         `json:"fecha"`
	Weekday  string         `json:"dia"`
	Records  []DetailRecord `json:"registros"`
	Subtotal float64        `json:"subtotal"`
}

type DetailSummary struct {
	Pieces     int     `json:"totalPiezas"`
	Records    int     `json:"totalRegistros"`
	DaysWorked int     `json:"diasTrabajados"`
	Total      float64 `json:"totalPagar"`
}

type WeekDetail struct {
	Operator    DetailOperator `json:"operaria"`
	Week        DetailWeek     `json:"semana"`
	PaymentDate string         `json:"fechaPago"`
	Days        []DayDetail    `json:"registrosPorDia"`
	Summary     DetailSummary  `json:"resumen"`
}

// WeekDetail lists one operator's operator-entered records of the week by
// local day. An empty status keeps every payment state.
func (s *Service) WeekDetail(ctx context.Context, code string, operatorID int64, status storage.PaymentFilter) (WeekDetail, error) {
	if code == "" {
		return WeekDetail{}, apperr.Validation("semana is required")
	}
	if operatorID <= 0 {
		return WeekDetail{}, apperr.Validation("operariaId is required")
	}
	operator, err := s.storage.Operator(operatorID)
	if err != nil {
		return WeekDetail{}, err
	}
	week, ok := s.cal.ResolveCode(code)
	if !ok {
		return WeekDetail{}, apperr.Validation("invalid week code %q, expected YYYY-WNN (e.g. 2025-W50)", code).With("semana", code)
	}

	records := s.ledger.Select(ledger.Filter{
		Week:       week,
		OperatorID: operatorID,
		Source:     storage.SourceFilter(storage.SourceOperator),
		Status:     status,
	})

	schools := make(map[int64]string)
	for _, o := range s.storage.Orders() {
		schools[o.ID] = o.School
	}
	garments := make(map[int64]string)
	for _, g := range s.storage.Garments() {
		garments[g.ID] = g.Name
	}

	type dayAcc struct {
		day      DayDetail
		subtotal money.Accumulator
	}
	days := make(map[string]*dayAcc)
	var total money.Accumulator
	summary := DetailSummary{Records: len(records)}

	for _, r := range records {
		key := s.cal.LocalDay(r.CreatedAt)
		d, ok := days[key]
		if !ok {
			d = &dayAcc{day: DayDetail{Day: key, Weekday: s.cal.WeekdayName(key), Records: []DetailRecord{}}}
			days[key] = d
		}

		school, ok := schools[r.OrderID]
		if !ok {
			school = notAvailable
		}
		garment := notAvailable
		if r.GarmentID != nil {
			if n, ok := garments[*r.GarmentID]; ok {
				garment = n
			}
		}

		d.day.Records = append(d.day.Records, DetailRecord{
			ID:          r.ID,
			School:      school,
			Garment:     garment,
			Description: r.Description,
			Quantity:    r.Quantity,
			Machine:     r.Machine,
			UnitPrice:   r.UnitPrice,
			Total:       r.Total,
		})
		d.subtotal.Add(r.Total)
		summary.Pieces += r.Quantity
		total.Add(r.Total)
	}

	out := make([]DayDetail, 0, len(days))
	for _, d := range days {
		d.day.Subtotal = d.subtotal.Float()
		out = append(out, d.day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })

	summary.DaysWorked = len(out)
	summary.Total = total.Float()

	return WeekDetail{
		Operator: DetailOperator{ID: operator.ID, Name: operator.Name},
		Week: DetailWeek{
			Code:  week.Code,
			Start: week.StartDay(),
			End:   week.EndDay(),
			Label: s.cal.Label(week),
		},
		PaymentDate: s.cal.LocalDay(s.now()),
		Days:        out,
		Summary:     summary,
	}, nil
}
