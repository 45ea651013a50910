package memory

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

func newStore(t *testing.T) (*Store, *atomic.Int32) {
	t.Helper()
	s := New(nil)
	var changes atomic.Int32
	s.OnChange(func() { changes.Add(1) })
	return s, &changes
}

func TestDeleteOperator_ReferentialConflict(t *testing.T) {
	s, _ := newStore(t)

	free := s.CreateOperator(storage.Operator{Name: "Lupita"})
	busy := s.CreateOperator(storage.Operator{Name: "Rosa"})
	order := s.CreateOrder(storage.Order{School: "Primaria Juárez", Folio: "F-1"})
	s.InsertRecord(storage.Record{OperatorID: busy.ID, OrderID: order.ID, Quantity: 2})

	require.NoError(t, s.DeleteOperator(free.ID))

	err := s.DeleteOperator(busy.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindReferentialConflict))
	assert.Equal(t, 1, apperr.As(err).Details()["references"])

	_, err = s.Operator(busy.ID)
	assert.NoError(t, err, "operator must survive a rejected delete")

	err = s.DeleteOperator(999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteOrder_ReferentialConflict(t *testing.T) {
	s, _ := newStore(t)

	op := s.CreateOperator(storage.Operator{Name: "Rosa"})
	used := s.CreateOrder(storage.Order{School: "A", Folio: "1"})
	unused := s.CreateOrder(storage.Order{School: "B", Folio: "2"})
	s.InsertRecord(storage.Record{OperatorID: op.ID, OrderID: used.ID, Quantity: 1})

	assert.True(t, apperr.IsKind(s.DeleteOrder(used.ID), apperr.KindReferentialConflict))
	assert.NoError(t, s.DeleteOrder(unused.ID))
	assert.Len(t, s.Orders(), 1)
}

func TestCreateOrder_AssignsMonotonicOperationIDs(t *testing.T) {
	s, _ := newStore(t)

	a := s.CreateOrder(storage.Order{Items: []storage.OrderItem{
		{GarmentID: 1, Operations: []storage.Operation{{Seam: "Hombros"}, {Seam: "Cuello"}}},
	}})
	b := s.CreateOrder(storage.Order{Items: []storage.OrderItem{
		{GarmentID: 2, Operations: []storage.Operation{{ID: 1, Seam: "Pretina"}}},
	}})

	assert.Equal(t, int64(1), a.Items[0].Operations[0].ID)
	assert.Equal(t, int64(2), a.Items[0].Operations[1].ID)
	assert.Equal(t, int64(3), b.Items[0].Operations[0].ID, "client ids are ignored on create")
	assert.Equal(t, []int64{1}, a.Garments)
}

func TestUpdateOrder_KeepsKnownOperationIDs(t *testing.T) {
	s, _ := newStore(t)

	o := s.CreateOrder(storage.Order{Items: []storage.OrderItem{
		{GarmentID: 1, Operations: []storage.Operation{{Seam: "Hombros", Price: 1}, {Seam: "Cuello", Price: 2}}},
	}})

	updated, err := s.UpdateOrder(o.ID, func(x *storage.Order) error {
		x.Items[0].Operations[0].Price = 5
		x.Items[0].Operations = append(x.Items[0].Operations,
			storage.Operation{Seam: "Dobladillo"},
			storage.Operation{ID: 77, Seam: "Forged"},
			storage.Operation{ID: 1, Seam: "Duplicate"},
		)
		return nil
	})
	require.NoError(t, err)

	ops := updated.Items[0].Operations
	assert.Equal(t, int64(1), ops[0].ID)
	assert.Equal(t, 5.0, ops[0].Price)
	assert.Equal(t, int64(2), ops[1].ID)
	assert.Equal(t, int64(3), ops[2].ID)
	assert.Equal(t, int64(4), ops[3].ID, "unknown ids are replaced")
	assert.Equal(t, int64(5), ops[4].ID, "duplicate ids are replaced")
}

func TestUpdateOrder_ErrorLeavesStateUntouched(t *testing.T) {
	s, changes := newStore(t)
	o := s.CreateOrder(storage.Order{School: "A"})
	before := changes.Load()

	_, err := s.UpdateOrder(o.ID, func(x *storage.Order) error {
		x.School = "B"
		return apperr.Validation("nope")
	})
	require.Error(t, err)

	got, err := s.Order(o.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.School)
	assert.Equal(t, before, changes.Load())
}

func TestRecords_CopiesAreIsolated(t *testing.T) {
	s, _ := newStore(t)
	size := "10"
	r := s.InsertRecord(storage.Record{OperatorID: 1, OrderID: 1, Quantity: 3, Size: &size})

	list := s.Records(nil)
	require.Len(t, list, 1)
	*list[0].Size = "12"
	list[0].Quantity = 99

	got, err := s.Record(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Equal(t, "10", *got.Size)
}

func TestUpdateRecords_BulkAndNotify(t *testing.T) {
	s, changes := newStore(t)
	for i := 0; i < 3; i++ {
		s.InsertRecord(storage.Record{OperatorID: int64(i % 2), Quantity: 1, PaymentStatus: storage.PaymentPending})
	}
	before := changes.Load()

	now := time.Now()
	changed := s.UpdateRecords(
		func(r storage.Record) bool { return r.OperatorID == 0 },
		func(r *storage.Record) bool { return r.MarkPaid("2025-W50", now) },
	)
	assert.Len(t, changed, 2)
	assert.Equal(t, before+1, changes.Load())

	again := s.UpdateRecords(
		func(r storage.Record) bool { return r.OperatorID == 0 },
		func(r *storage.Record) bool { return r.MarkPaid("2025-W50", now) },
	)
	assert.Empty(t, again)
	assert.Equal(t, before+1, changes.Load(), "no-op bulk update does not mark dirty")
}

func TestCatalog_UniqueNamesAndTemplates(t *testing.T) {
	s, _ := newStore(t)

	g, err := s.CreateGarment("Falda")
	require.NoError(t, err)
	_, err = s.CreateGarment("falda")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = s.CreateSeam("Pretina")
	require.NoError(t, err)

	tpl := s.ReplaceTemplate(g.ID, []storage.TemplateEntry{
		{Seam: "pretina", Machine: "Recta"},
		{Seam: "Dobladillo", Machine: "Collareta"},
	})
	assert.Len(t, tpl, 2)
	assert.Len(t, s.Seams(), 2, "only the new seam joins the catalog")

	tpl = s.AppendTemplate(g.ID, storage.TemplateEntry{Seam: "Cierre", Machine: "Recta"})
	assert.Len(t, tpl, 3)
	assert.Len(t, s.Seams(), 3)

	s.CreateOrder(storage.Order{Items: []storage.OrderItem{{GarmentID: g.ID}}})
	assert.True(t, apperr.IsKind(s.DeleteGarment(g.ID), apperr.KindReferentialConflict))
}

func TestMachines(t *testing.T) {
	s, changes := newStore(t)

	s.AddMachine("Recta")
	before := changes.Load()
	list := s.AddMachine("Recta")
	assert.Equal(t, []string{"Recta"}, list)
	assert.Equal(t, before, changes.Load())

	_, err := s.DeleteMachine("Over")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	list, err = s.DeleteMachine("Recta")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	s.CreateOperator(storage.Operator{Name: "Rosa"})
	s.CreateOrder(storage.Order{Items: []storage.OrderItem{{Operations: []storage.Operation{{Seam: "A"}}}}})
	s.PutStaffUser(storage.StaffUser{Name: "admin", Kind: storage.StaffAdmin})

	snap := s.Snapshot()
	restored := New(snap)

	assert.Equal(t, s.Operators(), restored.Operators())
	assert.Equal(t, s.Orders(), restored.Orders())
	next := restored.CreateOrder(storage.Order{Items: []storage.OrderItem{{Operations: []storage.Operation{{Seam: "B"}}}}})
	assert.Equal(t, int64(2), next.Items[0].Operations[0].ID)

	u, err := restored.StaffUser(storage.StaffAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}
