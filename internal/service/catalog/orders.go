package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type OperationInput struct {
	ID          int64   `json:"opId,omitempty"`
	Seam        string  `json:"costura,omitempty"`
	Description string  `json:"descripcion,omitempty"`
	Machine     string  `json:"maquina,omitempty"`
	Price       float64 `json:"precio,omitempty" validate:"gte=0"`
}

func (in OperationInput) seam() string {
	if s := strings.TrimSpace(in.Seam); s != "" {
		return s
	}
	return strings.TrimSpace(in.Description)
}

type ItemInput struct {
	GarmentID  int64                `json:"prendaId" validate:"gt=0"`
	Quantity   int                  `json:"cantidad" validate:"gte=0"`
	Sizes      []storage.SizeTarget `json:"tallas,omitempty"`
	Operations []OperationInput     `json:"operaciones,omitempty" validate:"dive"`
}

type OrderInput struct {
	School     string      `json:"escuela" validate:"required"`
	Folio      string      `json:"folio" validate:"required"`
	Garments   []int64     `json:"prendas,omitempty"`
	Items      []ItemInput `json:"items,omitempty" validate:"dive"`
	PiecePrice float64     `json:"pagoPorPieza,omitempty" validate:"gte=0"`
}

func priceKey(seam, machine string) string {
	return strings.TrimSpace(seam) + "||" + strings.TrimSpace(machine)
}

// expandItem builds the stored item. When the garment has a template its
// operations come from there and the client only contributes prices, matched
// by seam and machine; otherwise the client operations are taken as given.
func (s *Service) expandItem(in ItemInput) storage.OrderItem {
	prices := make(map[string]float64, len(in.Operations))
	for _, o := range in.Operations {
		prices[priceKey(o.seam(), o.Machine)] = o.Price
	}

	var ops []storage.Operation
	if tpl := s.storage.Template(in.GarmentID); len(tpl) > 0 {
		ops = make([]storage.Operation, 0, len(tpl))
		for _, e := range tpl {
			ops = append(ops, storage.Operation{
				Seam:    e.Seam,
				Machine: e.Machine,
				Price:   prices[priceKey(e.Seam, e.Machine)],
			})
		}
	} else {
		ops = make([]storage.Operation, 0, len(in.Operations))
		for _, o := range in.Operations {
			ops = append(ops, storage.Operation{
				Seam:    o.seam(),
				Machine: strings.TrimSpace(o.Machine),
				Price:   o.Price,
			})
		}
	}

	item := storage.OrderItem{
		GarmentID:  in.GarmentID,
		Quantity:   in.Quantity,
		Sizes:      in.Sizes,
		Operations: ops,
	}
	item.NormalizeSizes()
	return item
}

// updateItem keeps the operations as sent, including their opId.
func updateItem(in ItemInput) storage.OrderItem {
	ops := make([]storage.Operation, 0, len(in.Operations))
	for _, o := range in.Operations {
		ops = append(ops, storage.Operation{
			ID:      o.ID,
			Seam:    o.seam(),
			Machine: strings.TrimSpace(o.Machine),
			Price:   o.Price,
		})
	}
	item := storage.OrderItem{
		GarmentID:  in.GarmentID,
		Quantity:   in.Quantity,
		Sizes:      in.Sizes,
		Operations: ops,
	}
	item.NormalizeSizes()
	return item
}

func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (storage.Order, error) {
	const op = "service.catalog.CreateOrder"

	school := strings.TrimSpace(in.School)
	folio := strings.TrimSpace(in.Folio)
	if school == "" {
		return storage.Order{}, apperr.Validation("escuela is required")
	}
	if folio == "" {
		return storage.Order{}, apperr.Validation("folio is required")
	}

	o := storage.Order{
		School:     school,
		Folio:      folio,
		Garments:   in.Garments,
		Items:      make([]storage.OrderItem, 0, len(in.Items)),
		Status:     storage.OrderActive,
		PiecePrice: in.PiecePrice,
	}
	if o.Garments == nil {
		o.Garments = []int64{}
	}
	for _, item := range in.Items {
		o.Items = append(o.Items, s.expandItem(item))
	}

	created := s.storage.CreateOrder(o)
	s.log.Info("order created",
		slog.String("op", op),
		slog.Int64("id", created.ID),
		slog.Int("items", len(created.Items)),
	)
	return created, nil
}

// OrderPatch leaves nil fields untouched. A non-nil Items replaces every item.
type OrderPatch struct {
	School     *string     `json:"escuela,omitempty"`
	Folio      *string     `json:"folio,omitempty"`
	PiecePrice *float64    `json:"pagoPorPieza,omitempty" validate:"omitempty,gte=0"`
	Garments   []int64     `json:"prendas,omitempty"`
	Items      []ItemInput `json:"items,omitempty" validate:"dive"`
}

func (s *Service) UpdateOrder(ctx context.Context, id int64, p OrderPatch) (storage.Order, error) {
	return s.storage.UpdateOrder(id, func(o *storage.Order) error {
		if v := nonBlank(p.School); v != "" {
			o.School = v
		}
		if v := nonBlank(p.Folio); v != "" {
			o.Folio = v
		}
		if p.PiecePrice != nil {
			o.PiecePrice = *p.PiecePrice
		}
		if p.Garments != nil {
			garments := make([]int64, 0, len(p.Garments))
			for _, g := range p.Garments {
				if g > 0 {
					garments = append(garments, g)
				}
			}
			o.Garments = garments
		}
		if p.Items != nil {
			o.Items = make([]storage.OrderItem, 0, len(p.Items))
			for _, item := range p.Items {
				o.Items = append(o.Items, updateItem(item))
			}
			o.SyncGarments()
		}
		return nil
	})
}

// SetOrderStatus stamps fechaTerminado when the order is finished and clears it otherwise.
func (s *Service) SetOrderStatus(ctx context.Context, id int64, status string) (storage.Order, error) {
	st := storage.OrderStatus(status)
	if !st.IsValid() {
		return storage.Order{}, apperr.Validation("estado must be activo or terminado").With("estado", status)
	}
	now := s.now().UTC()
	return s.storage.UpdateOrder(id, func(o *storage.Order) error {
		o.Status = st
		if st == storage.OrderCompleted {
			o.CompletedAt = &now
		} else {
			o.CompletedAt = nil
		}
		return nil
	})
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.storage.DeleteOrder(id)
}

type DetailItem struct {
	storage.OrderItem
	Garment string `json:"prenda"`
}

// OrderDetail is an order whose items carry their garment name.
type OrderDetail struct {
	storage.Order
	Items []DetailItem `json:"items"`
}

func (s *Service) Order(ctx context.Context, id int64) (OrderDetail, error) {
	o, err := s.storage.Order(id)
	if err != nil {
		return OrderDetail{}, err
	}
	names := s.garmentNames()
	d := OrderDetail{Order: o, Items: make([]DetailItem, 0, len(o.Items))}
	for _, item := range o.Items {
		d.Items = append(d.Items, DetailItem{OrderItem: item, Garment: nameOr(names, item.GarmentID)})
	}
	return d, nil
}
