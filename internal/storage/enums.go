package storage

import "fmt"

// Source tells who entered a production record.
type Source string

const (
	SourceOperator   Source = "operaria"
	SourceSupervisor Source = "encargada"
)

func (s Source) IsValid() bool {
	return s == SourceOperator || s == SourceSupervisor
}

// ParseSource defaults an empty value to SourceOperator.
func ParseSource(value string) (Source, error) {
	if value == "" {
		return SourceOperator, nil
	}
	s := Source(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid source %q", value)
	}
	return s, nil
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pendiente"
	PaymentPaid    PaymentStatus = "pagado"
)

func (p PaymentStatus) IsValid() bool {
	return p == PaymentPending || p == PaymentPaid
}

type OrderStatus string

const (
	OrderActive    OrderStatus = "activo"
	OrderCompleted OrderStatus = "terminado"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderActive || s == OrderCompleted
}

// FilterAll matches any value in source/payment/order-status filters.
const FilterAll = "todos"

type PaymentFilter string

// ParsePaymentFilter uses def when value is empty.
func ParsePaymentFilter(value string, def PaymentFilter) (PaymentFilter, error) {
	if value == "" {
		return def, nil
	}
	f := PaymentFilter(value)
	if value != FilterAll && !PaymentStatus(value).IsValid() {
		return "", fmt.Errorf("invalid payment status %q", value)
	}
	return f, nil
}

func (f PaymentFilter) Matches(status PaymentStatus) bool {
	return f == FilterAll || f == "" || PaymentStatus(f) == status
}

type SourceFilter string

func ParseSourceFilter(value string, def SourceFilter) (SourceFilter, error) {
	if value == "" {
		return def, nil
	}
	if value != FilterAll && !Source(value).IsValid() {
		return "", fmt.Errorf("invalid source %q", value)
	}
	return SourceFilter(value), nil
}

func (f SourceFilter) Matches(source Source) bool {
	return f == FilterAll || f == "" || Source(f) == source
}
