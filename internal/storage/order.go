package storage

import (
	"strings"
	"time"
)

type Order struct {
	ID          int64       `json:"id"`
	School      string      `json:"escuela"`
	Folio       string      `json:"folio"`
	Garments    []int64     `json:"prendas"`
	Items       []OrderItem `json:"items"`
	Status      OrderStatus `json:"estado"`
	CompletedAt *time.Time  `json:"fechaTerminado"`
	PiecePrice  float64     `json:"pagoPorPieza"`
}

type OrderItem struct {
	GarmentID  int64        `json:"prendaId"`
	Quantity   int          `json:"cantidad"`
	Sizes      []SizeTarget `json:"tallas"`
	Operations []Operation  `json:"operaciones"`
}

type SizeTarget struct {
	Size     string `json:"talla"`
	Quantity int    `json:"cantidad"`
}

// Operation is one planned sewing task. ID is the join key from records and is never reused.
type Operation struct {
	ID      int64   `json:"opId"`
	Seam    string  `json:"costura"`
	Machine string  `json:"maquina"`
	Price   float64 `json:"precio"`
}

// FindOperation locates an operation and its item by id.
func (o *Order) FindOperation(opID int64) (OrderItem, Operation, bool) {
	for _, item := range o.Items {
		for _, op := range item.Operations {
			if op.ID == opID {
				return item, op, true
			}
		}
	}
	return OrderItem{}, Operation{}, false
}

// SyncGarments rebuilds the legacy garment id list from the items.
func (o *Order) SyncGarments() {
	seen := make(map[int64]bool, len(o.Items))
	garments := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if seen[item.GarmentID] {
			continue
		}
		seen[item.GarmentID] = true
		garments = append(garments, item.GarmentID)
	}
	o.Garments = garments
}

// HasSizes reports whether the item defines per-size targets.
func (it OrderItem) HasSizes() bool {
	return len(it.Sizes) > 0
}

// SizeTarget returns the sub-target for size, false when the size is not listed.
func (it OrderItem) SizeTarget(size string) (int, bool) {
	size = strings.TrimSpace(size)
	if size == "" {
		return 0, false
	}
	for _, s := range it.Sizes {
		if strings.TrimSpace(s.Size) == size {
			return s.Quantity, true
		}
	}
	return 0, false
}

// Target is the size sub-target when the size is listed, else the whole item quantity.
func (it OrderItem) Target(size string) int {
	if it.HasSizes() {
		if q, ok := it.SizeTarget(size); ok {
			return q
		}
	}
	return it.Quantity
}

// NormalizeSizes drops blank or non-positive size rows and sets Quantity to their sum when any remain.
func (it *OrderItem) NormalizeSizes() {
	sizes := make([]SizeTarget, 0, len(it.Sizes))
	total := 0
	for _, s := range it.Sizes {
		name := strings.TrimSpace(s.Size)
		if name == "" || s.Quantity <= 0 {
			continue
		}
		sizes = append(sizes, SizeTarget{Size: name, Quantity: s.Quantity})
		total += s.Quantity
	}
	it.Sizes = sizes
	if len(sizes) > 0 {
		it.Quantity = total
	}
}

func (o Order) Clone() Order {
	c := o
	c.Garments = append([]int64(nil), o.Garments...)
	c.Items = make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item
		c.Items[i].Sizes = append([]SizeTarget(nil), item.Sizes...)
		c.Items[i].Operations = append([]Operation(nil), item.Operations...)
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
