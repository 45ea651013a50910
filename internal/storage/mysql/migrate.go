package mysql

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS operarias (
		id BIGINT PRIMARY KEY,
		nombre VARCHAR(255) NOT NULL,
		usuario VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		rol VARCHAR(32) NOT NULL,
		pago_por_prenda DOUBLE NOT NULL DEFAULT 0,
		activa BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS pedidos (
		id BIGINT PRIMARY KEY,
		escuela VARCHAR(255) NOT NULL,
		folio VARCHAR(255) NOT NULL,
		prendas JSON NOT NULL,
		items JSON NOT NULL,
		estado VARCHAR(16) NOT NULL,
		fecha_terminado DATETIME(3) NULL,
		pago_por_pieza DOUBLE NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS registros (
		id BIGINT PRIMARY KEY,
		operaria_id BIGINT NOT NULL,
		pedido_id BIGINT NOT NULL,
		prenda_id BIGINT NULL,
		operacion_id BIGINT NULL,
		talla VARCHAR(32) NULL,
		maquina VARCHAR(255) NOT NULL,
		descripcion VARCHAR(255) NOT NULL,
		cantidad INT NOT NULL,
		pago_por_pieza DOUBLE NOT NULL,
		total_ganado DOUBLE NOT NULL,
		fecha DATETIME(3) NOT NULL,
		fuente VARCHAR(16) NOT NULL,
		estado_pago VARCHAR(16) NOT NULL,
		semana_pago VARCHAR(8) NULL,
		fecha_pago DATETIME(3) NULL,
		INDEX idx_registros_pedido_operacion (pedido_id, operacion_id),
		INDEX idx_registros_operaria (operaria_id)
	)`,
	`CREATE TABLE IF NOT EXISTS prendas (
		id BIGINT PRIMARY KEY,
		nombre VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS costuras (
		id BIGINT PRIMARY KEY,
		nombre VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plantillas (
		prenda_id BIGINT NOT NULL,
		posicion INT NOT NULL,
		costura VARCHAR(255) NOT NULL,
		maquina VARCHAR(255) NOT NULL,
		PRIMARY KEY (prenda_id, posicion)
	)`,
	`CREATE TABLE IF NOT EXISTS maquinas (
		posicion INT PRIMARY KEY,
		nombre VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usuarios (
		id BIGINT PRIMARY KEY,
		nombre VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		tipo VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contadores (
		nombre VARCHAR(64) PRIMARY KEY,
		valor BIGINT NOT NULL
	)`,
}

// Migrate creates the snapshot tables when they are missing.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.mysql.Migrate"

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
