package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

var tables = []string{"registros", "pedidos", "operarias", "prendas", "costuras", "plantillas", "maquinas", "usuarios", "contadores"}

// Load reads every table concurrently. It returns nil, nil when the database holds no data.
func (s *Storage) Load(ctx context.Context) (*storage.Snapshot, error) {
	const op = "storage.mysql.Load"

	snap := &storage.Snapshot{}
	var counters map[string]int64

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.Operators, err = s.loadOperators(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Orders, err = s.loadOrders(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Records, err = s.loadRecords(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Garments, snap.Seams, err = s.loadCatalog(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Templates, err = s.loadTemplates(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Machines, err = s.loadMachines(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.StaffUsers, err = s.loadStaff(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		counters, err = s.loadCounters(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if snap.Empty() {
		return nil, nil
	}

	snap.OperatorCounter = counters["operariaIdCounter"]
	snap.OrderCounter = counters["pedidoIdCounter"]
	snap.RecordCounter = counters["registroIdCounter"]
	snap.SeamCounter = counters["costuraIdCounter"]
	snap.OperationCounter = counters["operacionIdCounter"]
	snap.GarmentCounter = counters["prendaIdCounter"]
	snap.Normalize()

	return snap, nil
}

// Save replaces the content of every table inside one transaction.
func (s *Storage) Save(ctx context.Context, snap *storage.Snapshot) error {
	const op = "storage.mysql.Save"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("%s: clear %s: %w", op, table, err)
		}
	}

	steps := []func(context.Context, *sql.Tx, *storage.Snapshot) error{
		saveOperators,
		saveOrders,
		saveRecords,
		saveCatalog,
		saveTemplates,
		saveMachines,
		saveStaff,
		saveCounters,
	}
	for _, step := range steps {
		if err := step(ctx, tx, snap); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func (s *Storage) loadOperators(ctx context.Context) ([]storage.Operator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nombre, usuario, password, rol, pago_por_prenda, activa FROM operarias ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query operarias: %w", err)
	}
	defer rows.Close()

	var out []storage.Operator
	for rows.Next() {
		var o storage.Operator
		if err := rows.Scan(&o.ID, &o.Name, &o.Username, &o.Password, &o.Role, &o.DefaultPrice, &o.Active); err != nil {
			return nil, fmt.Errorf("scan operaria: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Storage) loadOrders(ctx context.Context) ([]storage.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, escuela, folio, prendas, items, estado, fecha_terminado, pago_por_pieza FROM pedidos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query pedidos: %w", err)
	}
	defer rows.Close()

	var out []storage.Order
	for rows.Next() {
		var (
			o           storage.Order
			garmentsRaw string
			itemsRaw    string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&o.ID, &o.School, &o.Folio, &garmentsRaw, &itemsRaw, &o.Status, &completedAt, &o.PiecePrice); err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}
		if err := json.Unmarshal([]byte(garmentsRaw), &o.Garments); err != nil {
			return nil, fmt.Errorf("decode prendas of pedido %d: %w", o.ID, err)
		}
		if err := json.Unmarshal([]byte(itemsRaw), &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of pedido %d: %w", o.ID, err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			o.CompletedAt = &t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Storage) loadRecords(ctx context.Context) ([]storage.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operaria_id, pedido_id, prenda_id, operacion_id, talla, maquina, descripcion,
		       cantidad, pago_por_pieza, total_ganado, fecha, fuente, estado_pago, semana_pago, fecha_pago
		FROM registros ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query registros: %w", err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		var (
			r           storage.Record
			garmentID   sql.NullInt64
			operationID sql.NullInt64
			size        sql.NullString
			paidWeek    sql.NullString
			paidAt      sql.NullTime
		)
		err := rows.Scan(&r.ID, &r.OperatorID, &r.OrderID, &garmentID, &operationID, &size, &r.Machine, &r.Description,
			&r.Quantity, &r.UnitPrice, &r.Total, &r.CreatedAt, &r.Source, &r.PaymentStatus, &paidWeek, &paidAt)
		if err != nil {
			return nil, fmt.Errorf("scan registro: %w", err)
		}
		if garmentID.Valid {
			r.GarmentID = &garmentID.Int64
		}
		if operationID.Valid {
			r.OperationID = &operationID.Int64
		}
		if size.Valid {
			r.Size = &size.String
		}
		if paidWeek.Valid {
			r.PaidWeek = &paidWeek.String
		}
		if paidAt.Valid {
			r.PaidAt = &paidAt.Time
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Storage) loadCatalog(ctx context.Context) ([]storage.Garment, []storage.Seam, error) {
	garments, err := s.loadNamed(ctx, "prendas")
	if err != nil {
		return nil, nil, err
	}
	seams, err := s.loadNamed(ctx, "costuras")
	if err != nil {
		return nil, nil, err
	}

	outG := make([]storage.Garment, len(garments))
	for i, n := range garments {
		outG[i] = storage.Garment{ID: n.id, Name: n.name}
	}
	outS := make([]storage.Seam, len(seams))
	for i, n := range seams {
		outS[i] = storage.Seam{ID: n.id, Name: n.name}
	}
	return outG, outS, nil
}

type named struct {
	id   int64
	name string
}

func (s *Storage) loadNamed(ctx context.Context, table string) ([]named, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, nombre FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []named
	for rows.Next() {
		var n named
		if err := rows.Scan(&n.id, &n.name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Storage) loadTemplates(ctx context.Context) (map[int64][]storage.TemplateEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT prenda_id, costura, maquina FROM plantillas ORDER BY prenda_id, posicion`)
	if err != nil {
		return nil, fmt.Errorf("query plantillas: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]storage.TemplateEntry)
	for rows.Next() {
		var (
			garmentID int64
			e         storage.TemplateEntry
		)
		if err := rows.Scan(&garmentID, &e.Seam, &e.Machine); err != nil {
			return nil, fmt.Errorf("scan plantilla: %w", err)
		}
		out[garmentID] = append(out[garmentID], e)
	}
	return out, rows.Err()
}

func (s *Storage) loadMachines(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT nombre FROM maquinas ORDER BY posicion`)
	if err != nil {
		return nil, fmt.Errorf("query maquinas: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan maquina: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Storage) loadStaff(ctx context.Context) ([]storage.StaffUser, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nombre, password, tipo FROM usuarios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query usuarios: %w", err)
	}
	defer rows.Close()

	var out []storage.StaffUser
	for rows.Next() {
		var u storage.StaffUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Password, &u.Kind); err != nil {
			return nil, fmt.Errorf("scan usuario: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Storage) loadCounters(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT nombre, valor FROM contadores`)
	if err != nil {
		return nil, fmt.Errorf("query contadores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			name  string
			value int64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan contador: %w", err)
		}
		out[name] = value
	}
	return out, rows.Err()
}

func saveOperators(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO operarias (id, nombre, usuario, password, rol, pago_por_prenda, activa) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare operarias: %w", err)
	}
	defer stmt.Close()

	for _, o := range snap.Operators {
		if _, err := stmt.ExecContext(ctx, o.ID, o.Name, o.Username, o.Password, o.Role, o.DefaultPrice, o.Active); err != nil {
			return fmt.Errorf("insert operaria %d: %w", o.ID, err)
		}
	}
	return nil
}

func saveOrders(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pedidos (id, escuela, folio, prendas, items, estado, fecha_terminado, pago_por_pieza) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare pedidos: %w", err)
	}
	defer stmt.Close()

	for _, o := range snap.Orders {
		garments := o.Garments
		if garments == nil {
			garments = []int64{}
		}
		items := o.Items
		if items == nil {
			items = []storage.OrderItem{}
		}
		garmentsJSON, err := json.Marshal(garments)
		if err != nil {
			return fmt.Errorf("encode prendas of pedido %d: %w", o.ID, err)
		}
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("encode items of pedido %d: %w", o.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, o.ID, o.School, o.Folio, string(garmentsJSON), string(itemsJSON),
			o.Status, nullTime(o.CompletedAt), o.PiecePrice); err != nil {
			return fmt.Errorf("insert pedido %d: %w", o.ID, err)
		}
	}
	return nil
}

func saveRecords(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO registros (id, operaria_id, pedido_id, prenda_id, operacion_id, talla, maquina, descripcion,
			cantidad, pago_por_pieza, total_ganado, fecha, fuente, estado_pago, semana_pago, fecha_pago)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare registros: %w", err)
	}
	defer stmt.Close()

	for _, r := range snap.Records {
		_, err := stmt.ExecContext(ctx, r.ID, r.OperatorID, r.OrderID, nullInt(r.GarmentID), nullInt(r.OperationID),
			nullString(r.Size), r.Machine, r.Description, r.Quantity, r.UnitPrice, r.Total, r.CreatedAt.UTC(),
			r.Source, r.PaymentStatus, nullString(r.PaidWeek), nullTime(r.PaidAt))
		if err != nil {
			return fmt.Errorf("insert registro %d: %w", r.ID, err)
		}
	}
	return nil
}

func saveCatalog(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	for _, g := range snap.Garments {
		if _, err := tx.ExecContext(ctx, `INSERT INTO prendas (id, nombre) VALUES (?, ?)`, g.ID, g.Name); err != nil {
			return fmt.Errorf("insert prenda %d: %w", g.ID, err)
		}
	}
	for _, c := range snap.Seams {
		if _, err := tx.ExecContext(ctx, `INSERT INTO costuras (id, nombre) VALUES (?, ?)`, c.ID, c.Name); err != nil {
			return fmt.Errorf("insert costura %d: %w", c.ID, err)
		}
	}
	return nil
}

func saveTemplates(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO plantillas (prenda_id, posicion, costura, maquina) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare plantillas: %w", err)
	}
	defer stmt.Close()

	for garmentID, entries := range snap.Templates {
		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, garmentID, i, e.Seam, e.Machine); err != nil {
				return fmt.Errorf("insert plantilla %d/%d: %w", garmentID, i, err)
			}
		}
	}
	return nil
}

func saveMachines(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	for i, name := range snap.Machines {
		if _, err := tx.ExecContext(ctx, `INSERT INTO maquinas (posicion, nombre) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("insert maquina %q: %w", name, err)
		}
	}
	return nil
}

func saveStaff(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	for _, u := range snap.StaffUsers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO usuarios (id, nombre, password, tipo) VALUES (?, ?, ?, ?)`,
			u.ID, u.Name, u.Password, u.Kind); err != nil {
			return fmt.Errorf("insert usuario %d: %w", u.ID, err)
		}
	}
	return nil
}

func saveCounters(ctx context.Context, tx *sql.Tx, snap *storage.Snapshot) error {
	counters := []struct {
		name  string
		value int64
	}{
		{"operariaIdCounter", snap.OperatorCounter},
		{"pedidoIdCounter", snap.OrderCounter},
		{"registroIdCounter", snap.RecordCounter},
		{"costuraIdCounter", snap.SeamCounter},
		{"operacionIdCounter", snap.OperationCounter},
		{"prendaIdCounter", snap.GarmentCounter},
	}
	for _, c := range counters {
		if _, err := tx.ExecContext(ctx, `INSERT INTO contadores (nombre, valor) VALUES (?, ?)`, c.name, c.value); err != nil {
			return fmt.Errorf("insert contador %s: %w", c.name, err)
		}
	}
	return nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}
