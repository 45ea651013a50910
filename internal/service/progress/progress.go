// Package progress compares an order's planned operations with recorded production.
package progress

import (
	"context"
	"math"
	"strings"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/money"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

const unknownName = "Desconocida"

type Storage interface {
	Order(id int64) (storage.Order, error)
	Records(match func(storage.Record) bool) []storage.Record
	Operators() []storage.Operator
	Garments() []storage.Garment
}

type Service struct {
	storage Storage
}

func New(storage Storage) *Service {
	return &Service{storage: storage}
}

type Capacity struct {
	Target    int `json:"objetivo"`
	Done      int `json:"hechas"`
	Remaining int `json:"restantes"`
}

// ComputeCapacity measures one operation of item against records.
// When the item has size targets and a size is given only that size counts
// as done; the ceiling falls back to the whole item when the size is unlisted.
func ComputeCapacity(orderID int64, item storage.OrderItem, opID int64, size string, records []storage.Record) Capacity {
	size = strings.TrimSpace(size)
	sizeScoped := item.HasSizes() && size != ""

	done := 0
	for _, r := range records {
		if r.OrderID != orderID || !r.HasOperation(opID) {
			continue
		}
		if sizeScoped && strings.TrimSpace(r.SizeLabel()) != size {
			continue
		}
		done += r.Quantity
	}

	target := item.Target(size)
	return Capacity{
		Target:    target,
		Done:      done,
		Remaining: max(0, target-done),
	}
}

// Check fails with CapacityExceeded iff requested exceeds what remains.
func (c Capacity) Check(requested int) error {
	if requested > c.Remaining {
		return apperr.CapacityExceeded(requested, c.Remaining, c.Done, c.Target)
	}
	return nil
}

func (s *Service) Capacity(ctx context.Context, orderID, opID int64, size string) (Capacity, error) {
	order, err := s.storage.Order(orderID)
	if err != nil {
		return Capacity{}, err
	}
	item, _, ok := order.FindOperation(opID)
	if !ok {
		return Capacity{}, apperr.NotFound("operation", opID).With("orderId", orderID)
	}
	records := s.storage.Records(func(r storage.Record) bool { return r.OrderID == orderID })
	return ComputeCapacity(orderID, item, opID, size, records), nil
}

func (s *Service) RemainingCapacity(ctx context.Context, orderID, opID int64, size string) (int, error) {
	c, err := s.Capacity(ctx, orderID, opID, size)
	if err != nil {
		return 0, err
	}
	return c.Remaining, nil
}

// CheckAndReserve checks against the ledger as it is now. Callers that insert
// afterwards must hold the order lock across both steps.
func (s *Service) CheckAndReserve(ctx context.Context, orderID, opID int64, size string, qty int) error {
	c, err := s.Capacity(ctx, orderID, opID, size)
	if err != nil {
		return err
	}
	return c.Check(qty)
}

type Contribution struct {
	OperatorID int64  `json:"operariaId"`
	Operator   string `json:"operaria"`
	Quantity   int    `json:"cantidad"`
}

type OperationProgress struct {
	OperationID   int64          `json:"opId"`
	Seam          string         `json:"costura"`
	Machine       string         `json:"maquina"`
	Price         float64        `json:"precio"`
	Target        int            `json:"cantidadTotal"`
	Done          int            `json:"piezasHechas"`
	Remaining     int            `json:"piezasFaltantes"`
	Percent       int            `json:"porcentaje"`
	EstimatedCost float64        `json:"costoEstimado"`
	EarnedCost    float64        `json:"costoAvance"`
	Breakdown     []Contribution `json:"desglose"`
}

type ItemProgress struct {
	GarmentID           int64               `json:"prendaId"`
	Garment             string              `json:"prenda"`
	Quantity            int                 `json:"cantidad"`
	Operations          []OperationProgress `json:"operaciones"`
	TotalOperations     int                 `json:"totalOperaciones"`
	CompletedOperations int                 `json:"operacionesCompletas"`
	Percent             int                 `json:"porcentajeGeneral"`
}

type OrderProgress struct {
	OrderID        int64          `json:"pedidoId"`
	School         string         `json:"escuela,omitempty"`
	Folio          string         `json:"folio,omitempty"`
	EstimatedTotal float64        `json:"costoEstimadoTotal"`
	EarnedTotal    float64        `json:"costoAvanceTotal"`
	Items          []ItemProgress `json:"avance"`
	Message        string         `json:"mensaje,omitempty"`
}

func percent(done, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(target)))
}

// Progress reports every operation of every item. Supervisor records are a
// parallel tally and do not count here.
func (s *Service) Progress(ctx context.Context, orderID int64) (OrderProgress, error) {
	order, err := s.storage.Order(orderID)
	if err != nil {
		return OrderProgress{}, err
	}
	if len(order.Items) == 0 {
		return OrderProgress{OrderID: orderID, Items: []ItemProgress{}, Message: "Pedido sin items detallados."}, nil
	}

	records := s.storage.Records(func(r storage.Record) bool {
		return r.OrderID == orderID && r.Source != storage.SourceSupervisor
	})
	operators := operatorNames(s.storage.Operators())
	garments := garmentNames(s.storage.Garments())

	out := OrderProgress{
		OrderID: order.ID,
		School:  order.School,
		Folio:   order.Folio,
		Items:   make([]ItemProgress, 0, len(order.Items)),
	}
	var estimated, earned money.Accumulator

	for _, item := range order.Items {
		ip := ItemProgress{
			GarmentID:       item.GarmentID,
			Garment:         nameOr(garments, item.GarmentID),
			Quantity:        item.Quantity,
			Operations:      make([]OperationProgress, 0, len(item.Operations)),
			TotalOperations: len(item.Operations),
		}
		percentSum := 0

		for _, op := range item.Operations {
			done := 0
			var cost money.Accumulator
			byOperator := map[int64]int{}
			var contributors []int64
			for _, r := range records {
				if !r.HasOperation(op.ID) {
					continue
				}
				done += r.Quantity
				cost.Add(r.Total)
				if _, seen := byOperator[r.OperatorID]; !seen {
					contributors = append(contributors, r.OperatorID)
				}
				byOperator[r.OperatorID] += r.Quantity
			}

			breakdown := make([]Contribution, 0, len(contributors))
			for _, id := range contributors {
				breakdown = append(breakdown, Contribution{OperatorID: id, Operator: nameOr(operators, id), Quantity: byOperator[id]})
			}

			opp := OperationProgress{
				OperationID:   op.ID,
				Seam:          op.Seam,
				Machine:       op.Machine,
				Price:         op.Price,
				Target:        item.Quantity,
				Done:          done,
				Remaining:     max(0, item.Quantity-done),
				Percent:       percent(done, item.Quantity),
				EstimatedCost: money.Total(item.Quantity, op.Price),
				EarnedCost:    cost.Float(),
				Breakdown:     breakdown,
			}
			if opp.Percent >= 100 {
				ip.CompletedOperations++
			}
			percentSum += opp.Percent
			estimated.Add(opp.EstimatedCost)
			earned.Add(opp.EarnedCost)
			ip.Operations = append(ip.Operations, opp)
		}

		if ip.TotalOperations > 0 {
			ip.Percent = int(math.Round(float64(percentSum) / float64(ip.TotalOperations)))
		}
		out.Items = append(out.Items, ip)
	}

	out.EstimatedTotal = estimated.Float()
	out.EarnedTotal = earned.Float()
	return out, nil
}

type AvailableOperation struct {
	GarmentID     int64   `json:"prendaId"`
	Garment       string  `json:"prenda"`
	OrderQuantity int     `json:"cantidadPedido"`
	Size          *string `json:"talla"`
	OperationID   int64   `json:"opId"`
	Seam          string  `json:"costura"`
	Machine       string  `json:"maquina"`
	Price         float64 `json:"precio"`
	Done          int     `json:"piezasHechas"`
	Remaining     int     `json:"cantidadFaltante"`
}

// AvailableOperations lists what can still be logged against an order.
// garmentID 0 means every item.
func (s *Service) AvailableOperations(ctx context.Context, orderID, garmentID int64, size string) ([]AvailableOperation, error) {
	order, err := s.storage.Order(orderID)
	if err != nil {
		return nil, err
	}

	records := s.storage.Records(func(r storage.Record) bool { return r.OrderID == orderID })
	garments := garmentNames(s.storage.Garments())

	size = strings.TrimSpace(size)
	var sizePtr *string
	if size != "" {
		sizePtr = &size
	}

	out := make([]AvailableOperation, 0)
	for _, item := range order.Items {
		if garmentID != 0 && item.GarmentID != garmentID {
			continue
		}
		for _, op := range item.Operations {
			c := ComputeCapacity(orderID, item, op.ID, size, records)
			out = append(out, AvailableOperation{
				GarmentID:     item.GarmentID,
				Garment:       nameOr(garments, item.GarmentID),
				OrderQuantity: item.Quantity,
				Size:          sizePtr,
				OperationID:   op.ID,
				Seam:          op.Seam,
				Machine:       op.Machine,
				Price:         op.Price,
				Done:          c.Done,
				Remaining:     c.Remaining,
			})
		}
	}
	return out, nil
}

func operatorNames(ops []storage.Operator) map[int64]string {
	m := make(map[int64]string, len(ops))
	for _, o := range ops {
		m[o.ID] = o.Name
	}
	return m
}

func garmentNames(gs []storage.Garment) map[int64]string {
	m := make(map[int64]string, len(gs))
	for _, g := range gs {
		m[g.ID] = g.Name
	}
	return m
}

func nameOr(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return unknownName
}
