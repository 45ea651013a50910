package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderItem_Target(t *testing.T) {
	item := OrderItem{
		GarmentID: 1,
		Quantity:  50,
		Sizes:     []SizeTarget{{Size: "10", Quantity: 20}, {Size: "12", Quantity: 30}},
	}

	assert.Equal(t, 20, item.Target("10"))
	assert.Equal(t, 30, item.Target(" 12 "))
	assert.Equal(t, 50, item.Target("14"), "unlisted size falls back to item target")
	assert.Equal(t, 50, item.Target(""))

	plain := OrderItem{Quantity: 40}
	assert.Equal(t, 40, plain.Target("10"))
}

func TestOrderItem_NormalizeSizes(t *testing.T) {
	item := OrderItem{
		Quantity: 5,
		Sizes: []SizeTarget{
			{Size: "8", Quantity: 10},
			{Size: " ", Quantity: 3},
			{Size: "10", Quantity: 0},
			{Size: " 12", Quantity: 6},
		},
	}
	item.NormalizeSizes()

	require.Len(t, item.Sizes, 2)
	assert.Equal(t, "12", item.Sizes[1].Size)
	assert.Equal(t, 16, item.Quantity)

	bare := OrderItem{Quantity: 7, Sizes: []SizeTarget{{Size: "", Quantity: 2}}}
	bare.NormalizeSizes()
	assert.Empty(t, bare.Sizes)
	assert.Equal(t, 7, bare.Quantity)
}

func TestOrder_FindOperationAndSync(t *testing.T) {
	o := Order{Items: []OrderItem{
		{GarmentID: 3, Operations: []Operation{{ID: 1, Seam: "Cerrar costados"}}},
		{GarmentID: 5, Operations: []Operation{{ID: 2, Seam: "Pegar cuello"}}},
		{GarmentID: 3, Operations: []Operation{{ID: 7, Seam: "Dobladillo"}}},
	}}

	item, op, ok := o.FindOperation(2)
	require.True(t, ok)
	assert.Equal(t, int64(5), item.GarmentID)
	assert.Equal(t, "Pegar cuello", op.Seam)

	_, _, ok = o.FindOperation(99)
	assert.False(t, ok)

	o.SyncGarments()
	assert.Equal(t, []int64{3, 5}, o.Garments)
}

func TestRecord_MarkPaidIsOneWay(t *testing.T) {
	r := Record{Quantity: 3, UnitPrice: 0.1, PaymentStatus: PaymentPending}
	r.Recompute()
	assert.InDelta(t, 0.3, r.Total, 1e-9)

	require.True(t, r.MarkPaid("2025-W50", r.CreatedAt))
	require.NotNil(t, r.PaidWeek)
	assert.Equal(t, "2025-W50", *r.PaidWeek)
	assert.False(t, r.MarkPaid("2025-W51", r.CreatedAt))
	assert.Equal(t, "2025-W50", *r.PaidWeek)
}

func TestParseFilters(t *testing.T) {
	src, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceOperator, src)

	_, err = ParseSource("jefa")
	assert.Error(t, err)

	pf, err := ParsePaymentFilter("", PaymentFilter(PaymentPending))
	require.NoError(t, err)
	assert.True(t, pf.Matches(PaymentPending))
	assert.False(t, pf.Matches(PaymentPaid))

	pf, err = ParsePaymentFilter(FilterAll, PaymentFilter(PaymentPending))
	require.NoError(t, err)
	assert.True(t, pf.Matches(PaymentPaid))

	_, err = ParsePaymentFilter("debe", "")
	assert.Error(t, err)

	sf, err := ParseSourceFilter("encargada", SourceFilter(SourceOperator))
	require.NoError(t, err)
	assert.True(t, sf.Matches(SourceSupervisor))
	assert.False(t, sf.Matches(SourceOperator))
}

func TestSnapshot_Normalize(t *testing.T) {
	opID := int64(41)
	s := &Snapshot{
		Operators:     []Operator{{ID: 4}},
		Orders:        []Order{{ID: 9, Items: []OrderItem{{Operations: []Operation{{ID: 12}}}}}},
		Records:       []Record{{ID: 30, OperationID: &opID}},
		Garments:      []Garment{{ID: 13}},
		RecordCounter: 100,
	}
	s.Normalize()

	assert.Equal(t, int64(5), s.OperatorCounter)
	assert.Equal(t, int64(10), s.OrderCounter)
	assert.Equal(t, int64(100), s.RecordCounter, "counter never goes down")
	assert.Equal(t, int64(42), s.OperationCounter)
	assert.Equal(t, int64(14), s.GarmentCounter)
	assert.Equal(t, int64(1), s.SeamCounter)
	assert.NotNil(t, s.Templates)
	assert.NotNil(t, s.Machines)
	assert.Equal(t, SourceOperator, s.Records[0].Source)
	assert.Equal(t, PaymentPending, s.Records[0].PaymentStatus)
	assert.Equal(t, OrderActive, s.Orders[0].Status)
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	size := "10"
	s := &Snapshot{
		Orders:    []Order{{ID: 1, Items: []OrderItem{{Operations: []Operation{{ID: 1, Price: 2}}}}}},
		Records:   []Record{{ID: 1, Size: &size}},
		Templates: map[int64][]TemplateEntry{9: {{Seam: "Pretina", Machine: "Recta"}}},
	}
	c := s.Clone()
	c.Orders[0].Items[0].Operations[0].Price = 9
	*c.Records[0].Size = "12"
	c.Templates[9][0].Machine = "Over"

	assert.Equal(t, 2.0, s.Orders[0].Items[0].Operations[0].Price)
	assert.Equal(t, "10", *s.Records[0].Size)
	assert.Equal(t, "Recta", s.Templates[9][0].Machine)
}
